package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLimitsPerAddress(t *testing.T) {
	store, err := NewStore("memory://")
	require.NoError(t, err)
	logger, hook := test.NewNullLogger()

	mw, err := Middleware(store, "register", "2-M", logger)
	require.NoError(t, err)
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/team", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, do("10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusNoContent, do("10.0.0.1:5001").Code)

	rec := do("10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too many requests")
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "rate limit reached", hook.LastEntry().Message)

	assert.Equal(t, http.StatusNoContent, do("10.0.0.2:5000").Code, "other clients keep their own budget")
}

func TestMiddlewareRejectsBadRate(t *testing.T) {
	store, err := NewStore("")
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()

	_, err = Middleware(store, "default", "ten per minute", logger)
	assert.Error(t, err)
}

func TestNewStore(t *testing.T) {
	_, err := NewStore("memcached://localhost")
	assert.Error(t, err)

	_, err = NewStore("redis://%zz")
	assert.Error(t, err)
}

func TestMiddlewareNamesKeepSeparateCounters(t *testing.T) {
	store, err := NewStore("memory://")
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()

	outer, err := Middleware(store, "default", "5-M", logger)
	require.NoError(t, err)
	inner, err := Middleware(store, "register", "1-M", logger)
	require.NoError(t, err)
	h := outer(inner(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/team", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/team", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
