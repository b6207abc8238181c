package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/landscape-hq/underwriter/internal/errors"
	"github.com/landscape-hq/underwriter/internal/logging"
)

// RateLimiter applies a per-principal token bucket. The principal is the
// authenticated user id, falling back to the remote address.
type RateLimiter struct {
	perMinute int
	burst     int
	log       *logging.Logger

	mu       sync.Mutex
	buckets  map[string]*bucket
	lastSeen map[string]time.Time
}

type bucket struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter allowing perMinute requests with the
// given burst. A non-positive perMinute disables limiting.
func NewRateLimiter(perMinute, burst int, log *logging.Logger) *RateLimiter {
	if burst <= 0 {
		burst = perMinute
	}
	if log == nil {
		log = logging.NewDefault("ratelimit")
	}
	return &RateLimiter{
		perMinute: perMinute,
		burst:     burst,
		log:       log,
		buckets:   make(map[string]*bucket),
		lastSeen:  make(map[string]time.Time),
	}
}

func (l *RateLimiter) limiterFor(principal string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[principal]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(float64(l.perMinute)/60), l.burst)}
		l.buckets[principal] = b
	}
	l.lastSeen[principal] = time.Now()

	// cheap sweep of idle principals once the table grows
	if len(l.buckets) > 10_000 {
		cutoff := time.Now().Add(-10 * time.Minute)
		for p, seen := range l.lastSeen {
			if seen.Before(cutoff) {
				delete(l.buckets, p)
				delete(l.lastSeen, p)
			}
		}
	}
	return b.limiter
}

// Handler returns the middleware handler.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	if l.perMinute <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := logging.GetUserID(r.Context())
		if principal == "" {
			principal = r.RemoteAddr
		}
		if !l.limiterFor(principal).Allow() {
			l.log.WithContext(r.Context()).
				WithField("principal", principal).
				WithField("path", r.URL.Path).
				Warn("rate limit exceeded")
			writeJSONError(w, http.StatusTooManyRequests, errors.RateLimitExceeded(l.perMinute, "minute"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
