package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, expires, err := m.Issue("admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.NotEmpty(t, claims.Id)
}

func TestVerifyRejects(t *testing.T) {
	m := NewManager("secret", time.Hour)
	token, _, err := m.Issue("admin")
	require.NoError(t, err)

	other := NewManager("other-secret", time.Hour)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession, "wrong secret")

	_, err = m.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidSession)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{StandardClaims: jwt.StandardClaims{
		Subject:   "admin",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidSession, "alg none")
}

func TestVerifyExpired(t *testing.T) {
	m := NewManager("secret", time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := m.Issue("admin")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestRevoke(t *testing.T) {
	m := NewManager("secret", time.Hour)
	token, _, err := m.Issue("admin")
	require.NoError(t, err)

	m.Revoke(token)
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	fresh, _, err := m.Issue("admin")
	require.NoError(t, err)
	_, err = m.Verify(fresh)
	assert.NoError(t, err, "revocation is per token")
}

func TestCookieRoundTrip(t *testing.T) {
	m := NewManager("secret", time.Hour)
	token, expires, err := m.Issue("admin")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	m.SetCookie(w, token, expires)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	r := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	r.AddCookie(cookies[0])
	claims, err := m.FromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)

	_, err = m.FromRequest(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	assert.ErrorIs(t, err, ErrInvalidSession)

	w = httptest.NewRecorder()
	m.ClearCookie(w)
	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, "", cleared[0].Value)
	assert.True(t, cleared[0].MaxAge < 0)
}
