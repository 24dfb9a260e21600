package middleware

import (
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
	scopeGeneral = "general"
	scopeAuth    = "auth"

	maxTrackedBuckets = 1000
	bucketIdleTTL     = 10 * time.Minute
)

type bucketKey struct {
	scope string
	ip    string
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware keeps one token bucket per client IP and scope. Paths
// under /auth/ draw from the stricter auth scope.
type RateLimitMiddleware struct {
	generalRPM int
	authRPM    int
	now        func() time.Time

	mu      sync.Mutex
	buckets map[bucketKey]*bucket
}

// NewRateLimitMiddleware limits each client IP per minute. A non-positive
// generalRPM disables limiting outside /auth.
func NewRateLimitMiddleware(generalRPM int, authRPM int) *RateLimitMiddleware {
	if authRPM <= 0 {
		authRPM = 10
	}

	return &RateLimitMiddleware{
		generalRPM: generalRPM,
		authRPM:    authRPM,
		now:        time.Now,
		buckets:    map[bucketKey]*bucket{},
	}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope, rpm := scopeGeneral, m.generalRPM
		if strings.HasPrefix(strings.ToLower(r.URL.Path), "/auth/") {
			scope, rpm = scopeAuth, m.authRPM
		}
		if rpm <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		if wait := m.reserve(bucketKey{scope: scope, ip: extractClientIP(r)}, rpm); wait > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			WriteJSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// reserve takes a token for key and returns how long the caller would have
// had to wait. A positive wait means the request is rejected and the
// reservation is handed back.
func (m *RateLimitMiddleware) reserve(key bucketKey, rpm int) time.Duration {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[key]
	if !ok {
		if len(m.buckets) >= maxTrackedBuckets {
			m.evictIdleLocked(now)
		}
		b = &bucket{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)}
		m.buckets[key] = b
	}
	b.lastSeen = now

	reservation := b.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return time.Minute
	}
	if wait := reservation.DelayFrom(now); wait > 0 {
		reservation.CancelAt(now)
		return wait
	}
	return 0
}

func (m *RateLimitMiddleware) evictIdleLocked(now time.Time) {
	cutoff := now.Add(-bucketIdleTTL)
	for key, b := range m.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(m.buckets, key)
		}
	}
}

// extractClientIP reads RemoteAddr, which chi's RealIP middleware has already
// rewritten from proxy headers.
func extractClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if addr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	return addr
}
