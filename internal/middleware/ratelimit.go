package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultRateLimitMax    = 100
	DefaultRateLimitWindow = 15 * time.Minute

	sweepThreshold = 1000

	headerRateLimitPolicy    = "RateLimit-Policy"
	headerRateLimitLimit     = "RateLimit-Limit"
	headerRateLimitRemaining = "RateLimit-Remaining"
	headerRateLimitReset     = "RateLimit-Reset"
	headerRetryAfter         = "Retry-After"
)

type rateWindow struct {
	start time.Time
	count int
}

// RateLimiter is a fixed-window request counter keyed by client IP. The
// window of a client opens with its first request and lasts for window.
type RateLimiter struct {
	max     int
	window  time.Duration
	message string
	now     func() time.Time

	mu      sync.Mutex
	clients map[string]*rateWindow
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimitMax
	}
	if window <= 0 {
		window = DefaultRateLimitWindow
	}

	return &RateLimiter{
		max:     limit,
		window:  window,
		message: fmt.Sprintf("max %d requests per %s!", limit, describeWindow(window)),
		now:     time.Now,
		clients: map[string]*rateWindow{},
	}
}

// WithClock replaces the time source.
func (l *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	l.now = now
	return l
}

func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count, resetAt := l.hit(extractClientIP(r))

		now := l.now()
		resetSeconds := int(math.Ceil(resetAt.Sub(now).Seconds()))
		if resetSeconds < 0 {
			resetSeconds = 0
		}

		h := w.Header()
		h.Set(headerRateLimitPolicy, fmt.Sprintf("%d;w=%d", l.max, int(l.window.Seconds())))
		h.Set(headerRateLimitLimit, strconv.Itoa(l.max))
		h.Set(headerRateLimitRemaining, strconv.Itoa(max(l.max-count, 0)))
		h.Set(headerRateLimitReset, strconv.Itoa(resetSeconds))

		if count > l.max {
			h.Set(headerRetryAfter, strconv.Itoa(resetSeconds))
			writePlain(w, http.StatusTooManyRequests, l.message)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// hit counts one request for key and returns the count within the current
// window together with the time that window ends.
func (l *RateLimiter) hit(key string) (int, time.Time) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	current, exists := l.clients[key]
	if !exists || !now.Before(current.start.Add(l.window)) {
		if !exists {
			l.gcLocked(now)
		}
		current = &rateWindow{start: now}
		l.clients[key] = current
	}
	current.count++

	return current.count, current.start.Add(l.window)
}

func (l *RateLimiter) gcLocked(now time.Time) {
	if len(l.clients) < sweepThreshold {
		return
	}

	for key, entry := range l.clients {
		if !now.Before(entry.start.Add(l.window)) {
			delete(l.clients, key)
		}
	}
}

func describeWindow(window time.Duration) string {
	switch {
	case window%time.Hour == 0 && window > time.Hour:
		return fmt.Sprintf("%d hours", int(window/time.Hour))
	case window == time.Hour:
		return "hour"
	case window%time.Minute == 0 && window > time.Minute:
		return fmt.Sprintf("%d minutes", int(window/time.Minute))
	case window == time.Minute:
		return "minute"
	default:
		return fmt.Sprintf("%d seconds", int(window/time.Second))
	}
}

type throttleClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// AuthThrottle is a per-client token bucket placed in front of credential
// endpoints. A zero rpm disables it.
type AuthThrottle struct {
	rpm     int
	mu      sync.Mutex
	clients map[string]*throttleClient
}

func NewAuthThrottle(rpm int) *AuthThrottle {
	return &AuthThrottle{rpm: rpm, clients: map[string]*throttleClient{}}
}

func (t *AuthThrottle) Handler(next http.Handler) http.Handler {
	if t == nil || t.rpm <= 0 {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.getLimiter(extractClientIP(r)).Allow() {
			w.Header().Set(headerRetryAfter, "60")
			writePlain(w, http.StatusTooManyRequests, fmt.Sprintf("max %d requests per minute!", t.rpm))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (t *AuthThrottle) getLimiter(clientIP string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	if client, exists := t.clients[clientIP]; exists {
		client.lastSeen = time.Now()
		return client.limiter
	}

	t.gcLocked()
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(t.rpm)), t.rpm)
	t.clients[clientIP] = &throttleClient{limiter: limiter, lastSeen: time.Now()}

	return limiter
}

func (t *AuthThrottle) gcLocked() {
	if len(t.clients) < sweepThreshold {
		return
	}

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range t.clients {
		if client.lastSeen.Before(cutoff) {
			delete(t.clients, ip)
		}
	}
}

// ClientIP is the connection's peer host. Forwarding headers are only
// honoured when a proxy-aware middleware has already rewritten RemoteAddr.
func ClientIP(r *http.Request) string {
	return extractClientIP(r)
}

func extractClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if addr == "" {
		return "unknown"
	}

	host, _, err := net.SplitHostPort(addr)
	if err == nil && host != "" {
		return host
	}

	return addr
}
