package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitMiddleware_UnlimitedGeneral(t *testing.T) {
	handler := NewRateLimitMiddleware(0, 1).Handler(okHandler())

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/characters", nil))
		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}
}

func TestRateLimitMiddleware_LimitedAuth(t *testing.T) {
	handler := NewRateLimitMiddleware(0, 1).Handler(okHandler())

	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusOK, rec1.Code)

	// Burst is 1, so the immediate second request has no token left.
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
	assert.Equal(t, "60", rec2.Header().Get("Retry-After"))
	assert.Equal(t, "application/json", rec2.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"Too many requests","code":"RATE_LIMITED"}`, rec2.Body.String())
}

func TestRateLimitMiddleware_ScopesAreIndependent(t *testing.T) {
	handler := NewRateLimitMiddleware(1, 1).Handler(okHandler())

	for _, path := range []string{"/auth/login", "/characters"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRateLimitMiddleware_PerClient(t *testing.T) {
	// RealIP runs in front of the limiter in the router.
	handler := chimiddleware.RealIP(NewRateLimitMiddleware(1, 10).Handler(okHandler()))

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodGet, "/characters", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, ip)
	}

	req := httptest.NewRequest(http.MethodGet, "/characters", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimitMiddleware_RefillsOverTime(t *testing.T) {
	mw := NewRateLimitMiddleware(60, 10)
	now := time.Now()
	mw.now = func() time.Time { return now }

	key := bucketKey{scope: scopeGeneral, ip: "10.0.0.9"}
	for i := 0; i < 60; i++ {
		require.Zero(t, mw.reserve(key, 60), "request %d", i)
	}
	assert.Positive(t, mw.reserve(key, 60))

	now = now.Add(time.Second)
	assert.Zero(t, mw.reserve(key, 60))
}

func TestRateLimitMiddleware_EvictsIdleBuckets(t *testing.T) {
	mw := NewRateLimitMiddleware(10, 10)
	now := time.Now()
	mw.now = func() time.Time { return now }

	for i := 0; i < maxTrackedBuckets; i++ {
		mw.reserve(bucketKey{scope: scopeGeneral, ip: time.Duration(i).String()}, 10)
	}
	require.Len(t, mw.buckets, maxTrackedBuckets)

	now = now.Add(bucketIdleTTL + time.Second)
	mw.reserve(bucketKey{scope: scopeGeneral, ip: "fresh"}, 10)
	assert.Len(t, mw.buckets, 1)
}

func TestExtractClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	assert.Equal(t, "192.0.2.7", extractClientIP(req))

	req.RemoteAddr = "192.0.2.8"
	assert.Equal(t, "192.0.2.8", extractClientIP(req))

	req.RemoteAddr = ""
	assert.Equal(t, "unknown", extractClientIP(req))
}
