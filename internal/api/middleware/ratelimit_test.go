package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/catalog-api/internal/api"
	"github.com/stretchr/testify/assert"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	t.Parallel()

	krl := NewKeyedRateLimiter(60, 2)
	defer krl.Stop()

	assert.True(t, krl.Allow("a"))
	assert.True(t, krl.Allow("a"))
	assert.False(t, krl.Allow("a"), "burst exhausted")
	assert.True(t, krl.Allow("b"), "keys have separate buckets")
}

func TestKeyedRateLimiter_Refills(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	krl := NewKeyedRateLimiter(60, 1)
	defer krl.Stop()
	krl.now = func() time.Time { return now }

	assert.True(t, krl.Allow("a"))
	assert.False(t, krl.Allow("a"))

	now = now.Add(time.Second)
	assert.True(t, krl.Allow("a"), "one token per second at 60/min")
}

func TestKeyedRateLimiter_EvictIdle(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	krl := NewKeyedRateLimiter(60, 1)
	defer krl.Stop()
	krl.now = func() time.Time { return now }

	krl.Allow("old")
	now = now.Add(5 * time.Minute)
	krl.Allow("recent")
	now = now.Add(6 * time.Minute)

	krl.evictIdle()

	krl.mu.Lock()
	defer krl.mu.Unlock()
	assert.NotContains(t, krl.limiters, "old")
	assert.Contains(t, krl.limiters, "recent")
}

func TestKeyedRateLimiter_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	krl := NewKeyedRateLimiter(60, 1)
	krl.Stop()
	assert.NotPanics(t, krl.Stop)
}

func TestRateLimitByIP(t *testing.T) {
	t.Parallel()

	krl := NewKeyedRateLimiter(60, 1)
	defer krl.Stop()

	handler := RateLimitByIP(krl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1111").Code)

	limited := send("10.0.0.1:2222")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code, "port does not change the key")
	assert.Equal(t, api.MsgTooManyRequests, decodeError(t, limited))
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, send("10.0.0.2:1111").Code)
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		remoteAddr string
		expected   string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:80", "2001:db8::1"},
		{"192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remoteAddr
		assert.Equal(t, tt.expected, clientIP(req), tt.remoteAddr)
	}
}
