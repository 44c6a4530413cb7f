package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/alchemorsel/mealguard/internal/infrastructure/config"
	"github.com/alchemorsel/mealguard/pkg/errors"
)

// KeyFunc selects the bucket a request is charged to
type KeyFunc func(r *http.Request) string

// SessionKey charges requests to the {sessionID} route parameter and falls
// back to the client address
func SessionKey(r *http.Request) string {
	if id := chi.URLParam(r, "sessionID"); id != "" {
		return "session:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	idle     time.Duration
	key      KeyFunc
	logger   *zap.Logger
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
	stop     chan struct{}
	once     sync.Once
}

// NewRateLimiter creates a limiter from configuration and starts the idle
// bucket cleanup loop. Call Stop to end it.
func NewRateLimiter(cfg config.RateLimitConfig, key KeyFunc, logger *zap.Logger) *RateLimiter {
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}
	idle := cfg.CleanupInterval
	if idle <= 0 {
		idle = 5 * time.Minute
	}

	rl := &RateLimiter{
		limit:    rate.Limit(float64(cfg.RequestsPerMin) / 60),
		burst:    burst,
		idle:     idle,
		key:      key,
		logger:   logger.Named("rate-limiter"),
		visitors: make(map[string]*visitor),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go rl.cleanup()

	return rl
}

// Handler enforces the limit
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.key(r)
		if !rl.Allow(key) {
			rl.logger.Debug("Rate limit exceeded", zap.String("key", key))
			w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter()))
			WriteError(w, r, errors.NewTooManyRequestsError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Allow reports whether a request charged to key may proceed now
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// Sweep drops buckets idle longer than the cleanup interval
func (rl *RateLimiter) Sweep() int {
	cutoff := rl.now().Add(-rl.idle)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
			removed++
		}
	}
	return removed
}

// Stop ends the cleanup loop
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) retryAfter() int {
	if rl.limit <= 0 {
		return 60
	}
	secs := int(1/float64(rl.limit) + 0.5)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.idle)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			if n := rl.Sweep(); n > 0 {
				rl.logger.Debug("Dropped idle rate limit buckets", zap.Int("count", n))
			}
		}
	}
}
