// Package session issues and verifies signed, expiring admin session tokens.
package session

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

const CookieName = "admin_session"

var ErrInvalidSession = errors.New("invalid or expired session")

type Claims struct {
	jwt.StandardClaims
}

// Manager signs tokens with an HMAC secret. Logged-out token ids are kept in
// a revocation cache until the token would have expired anyway.
type Manager struct {
	secret  []byte
	ttl     time.Duration
	revoked *gocache.Cache
	now     func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: gocache.New(ttl, 10*time.Minute),
		now:     time.Now,
	}
}

// Issue creates a token for the admin username.
func (m *Manager) Issue(username string) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   username,
			Issuer:    "event-registration",
			IssuedAt:  now.Unix(),
			ExpiresAt: expires.Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign session")
	}
	return token, expires, nil
}

// Verify parses a token and returns its claims if it is valid and not revoked.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}
	if claims.ExpiresAt <= m.now().Unix() {
		return nil, ErrInvalidSession
	}
	if _, revoked := m.revoked.Get(claims.Id); revoked {
		return nil, ErrInvalidSession
	}
	return &claims, nil
}

// Revoke invalidates a token before its expiry.
func (m *Manager) Revoke(tokenString string) {
	claims, err := m.Verify(tokenString)
	if err != nil {
		return
	}
	remaining := time.Until(time.Unix(claims.ExpiresAt, 0))
	if remaining <= 0 {
		return
	}
	m.revoked.Set(claims.Id, struct{}{}, remaining)
}

// SetCookie writes the session cookie for a freshly issued token.
func (m *Manager) SetCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest returns the verified claims carried by the request cookie.
func (m *Manager) FromRequest(r *http.Request) (*Claims, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, ErrInvalidSession
	}
	return m.Verify(c.Value)
}
