package middleware

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/shramsetu/ncosearch/internal/domain"
	"github.com/shramsetu/ncosearch/internal/log"
)

// limiterIdleTTL bounds how long an idle client keeps its bucket.
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out per-client token buckets. Clients are keyed by
// remote address, or by the X-Rate-Key header when test keys are allowed so
// test runs do not share one bucket. Idle buckets are evicted on the fly.
type RateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientLimiter
	perMinute    int
	allowTestKey bool
	lastSweep    time.Time
	logger       *log.Logger
}

// NewRateLimiter creates a limiter allowing perMinute requests per client.
func NewRateLimiter(perMinute int, allowTestKey bool, logger *log.Logger) *RateLimiter {
	if logger == nil {
		logger = log.Default()
	}
	return &RateLimiter{
		clients:      make(map[string]*clientLimiter),
		perMinute:    perMinute,
		allowTestKey: allowTestKey,
		lastSweep:    time.Now(),
		logger:       logger,
	}
}

// Handler returns the middleware. A non-positive rate disables limiting.
func (rl *RateLimiter) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.perMinute <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			if !rl.allow(rl.clientKey(r)) {
				WriteError(w, r,
					fmt.Errorf("%w: %d requests per minute exceeded", domain.ErrRateLimited, rl.perMinute),
					rl.logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) clientKey(r *http.Request) string {
	if rl.allowTestKey {
		if key := r.Header.Get("X-Rate-Key"); key != "" {
			return "test:" + key
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// Unparseable address, fall back to the raw value rather than deny.
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) > limiterIdleTTL {
		for k, c := range rl.clients {
			if now.Sub(c.lastSeen) > limiterIdleTTL {
				delete(rl.clients, k)
			}
		}
		rl.lastSweep = now
	}

	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(float64(rl.perMinute)/60.0), rl.perMinute),
		}
		rl.clients[key] = c
	}
	c.lastSeen = now

	return c.limiter.Allow()
}
