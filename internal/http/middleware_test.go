package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbqaffair/catering-booking-and-orders/internal/auth"
)

// fakeLimiter records every bucket key it is asked about and denies
// the configured ones.
type fakeLimiter struct {
	keys []string
	deny map[string]bool
}

func (f *fakeLimiter) Allow(ctx context.Context, key string, rate int, period time.Duration) bool {
	f.keys = append(f.keys, key)
	return !f.deny[key]
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimitMiddleware_BucketsByAddress(t *testing.T) {
	f := &fakeLimiter{}
	handler := RateLimitMiddleware(f)(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/v1/drafts", nil)
	req.RemoteAddr = "203.0.113.7:52100"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	// One bucket per client address; anonymous requests never share a
	// user bucket.
	assert.Equal(t, []string{"ip:203.0.113.7:52100"}, f.keys)

	other := httptest.NewRequest(http.MethodGet, "/v1/drafts", nil)
	other.RemoteAddr = "198.51.100.2:40000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"ip:203.0.113.7:52100", "ip:198.51.100.2:40000"}, f.keys)
}

func TestRateLimitMiddleware_Exceeded(t *testing.T) {
	f := &fakeLimiter{deny: map[string]bool{"ip:203.0.113.7:52100": true}}
	handler := RateLimitMiddleware(f)(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/v1/drafts", nil)
	req.RemoteAddr = "203.0.113.7:52100"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestUserRateLimitMiddleware_AnonymousPassesThrough(t *testing.T) {
	f := &fakeLimiter{deny: map[string]bool{"user:": true}}
	handler := UserRateLimitMiddleware(f)(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.keys)
}

func TestUserRateLimitMiddleware_BucketsByPrincipal(t *testing.T) {
	sessions := auth.NewManager("test-secret", time.Hour)
	token, err := sessions.Issue("admin@bbqaffair.sg")
	require.NoError(t, err)

	f := &fakeLimiter{}
	handler := AuthMiddleware(sessions)(UserRateLimitMiddleware(f)(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"user:admin@bbqaffair.sg"}, f.keys)

	f.deny = map[string]bool{"user:admin@bbqaffair.sg": true}
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
