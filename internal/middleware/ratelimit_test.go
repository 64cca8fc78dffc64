package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hitFrom(handler http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/get_token", nil)
	req.RemoteAddr = ip + ":51234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_FixedWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	limiter := NewRateLimiter(100, 15*time.Minute).WithClock(clock.Now)
	handler := limiter.Handler(okHandler())

	for i := 0; i < 100; i++ {
		rec := hitFrom(handler, "10.0.0.1")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := hitFrom(handler, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "max 100 requests per 15 minutes!", rec.Body.String())
	assert.Equal(t, "900", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("RateLimit-Remaining"))

	// Other clients keep their own window.
	assert.Equal(t, http.StatusOK, hitFrom(handler, "10.0.0.2").Code)

	clock.Advance(15 * time.Minute)
	for i := 0; i < 100; i++ {
		rec := hitFrom(handler, "10.0.0.1")
		require.Equal(t, http.StatusOK, rec.Code, "request %d after rollover", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, hitFrom(handler, "10.0.0.1").Code)
}

func TestRateLimiter_Headers(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	handler := NewRateLimiter(100, 15*time.Minute).WithClock(clock.Now).Handler(okHandler())

	rec := hitFrom(handler, "10.0.0.1")
	assert.Equal(t, "100;w=900", rec.Header().Get("RateLimit-Policy"))
	assert.Equal(t, "100", rec.Header().Get("RateLimit-Limit"))
	assert.Equal(t, "99", rec.Header().Get("RateLimit-Remaining"))
	assert.Equal(t, "900", rec.Header().Get("RateLimit-Reset"))
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	assert.Empty(t, rec.Header().Get("Retry-After"))

	clock.Advance(5 * time.Minute)
	rec = hitFrom(handler, "10.0.0.1")
	assert.Equal(t, "98", rec.Header().Get("RateLimit-Remaining"))
	assert.Equal(t, "600", rec.Header().Get("RateLimit-Reset"))
}

func TestRateLimiter_Defaults(t *testing.T) {
	limiter := NewRateLimiter(0, 0)
	assert.Equal(t, DefaultRateLimitMax, limiter.max)
	assert.Equal(t, DefaultRateLimitWindow, limiter.window)
	assert.Equal(t, "max 100 requests per 15 minutes!", limiter.message)

	assert.Equal(t, "max 5 requests per minute!", NewRateLimiter(5, time.Minute).message)
}

func TestRateLimiter_SweepsExpiredWindows(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	limiter := NewRateLimiter(1, time.Minute).WithClock(clock.Now)

	for i := 0; i < sweepThreshold; i++ {
		limiter.hit(string(rune('a'+i%26)) + time.Duration(i).String())
	}
	require.Len(t, limiter.clients, sweepThreshold)

	clock.Advance(time.Minute)
	limiter.hit("fresh")
	assert.Len(t, limiter.clients, 1)
}

func TestRateLimiter_ConcurrentCount(t *testing.T) {
	limiter := NewRateLimiter(1000, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				limiter.hit("shared")
			}
		}()
	}
	wg.Wait()

	count, _ := limiter.hit("shared")
	assert.Equal(t, 501, count)
}

func TestAuthThrottle_Disabled(t *testing.T) {
	handler := NewAuthThrottle(0).Handler(okHandler())

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, hitFrom(handler, "10.0.0.1").Code)
	}
}

func TestAuthThrottle_Limited(t *testing.T) {
	handler := NewAuthThrottle(1).Handler(okHandler())

	assert.Equal(t, http.StatusOK, hitFrom(handler, "10.0.0.1").Code)

	// Burst of one is spent; the next immediate request waits a minute.
	rec := hitFrom(handler, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, hitFrom(handler, "10.0.0.2").Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "192.0.2.1", ClientIP(req))

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", ClientIP(req))

	req.RemoteAddr = ""
	assert.Equal(t, "unknown", ClientIP(req))
}

func TestRateLimiter_IgnoresForwardedHeaders(t *testing.T) {
	handler := NewRateLimiter(100, 0).Handler(okHandler())

	limited := 0
	for i := 0; i < 500; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/get_token", nil)
		req.RemoteAddr = "10.0.0.1:51234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("1.2.3.%d", i%256))
		req.Header.Set("X-Real-IP", fmt.Sprintf("4.5.6.%d", i%256))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i < 100 {
			require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
			continue
		}
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}

	assert.Equal(t, 400, limited)
}
