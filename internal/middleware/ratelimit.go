package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cardkeeper/cardkeeper/internal/respond"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const rateLimiterSweepInterval = 5 * time.Minute

// RateLimiter is a fixed-window admission counter keyed by client.
type RateLimiter interface {
	Allow(key string) bool
	Close()
}

type rateState struct {
	count     int
	windowEnd time.Time
}

type memoryRateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]rateState
	stopCh  chan struct{}
	once    sync.Once
}

// NewMemoryRateLimiter builds an in-process fixed-window limiter. A sweep
// goroutine drops expired windows until Close is called.
func NewMemoryRateLimiter(limit int, window time.Duration) RateLimiter {
	rl := &memoryRateLimiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]rateState),
		stopCh:  make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

func (rl *memoryRateLimiter) Allow(key string) bool {
	if rl.limit <= 0 {
		return true
	}
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	state, ok := rl.entries[key]
	if !ok || now.After(state.windowEnd) {
		rl.entries[key] = rateState{count: 1, windowEnd: now.Add(rl.window)}
		return true
	}
	if state.count >= rl.limit {
		return false
	}
	state.count++
	rl.entries[key] = state
	return true
}

func (rl *memoryRateLimiter) sweepLoop() {
	ticker := time.NewTicker(rateLimiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *memoryRateLimiter) cleanup(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, state := range rl.entries {
		if now.After(state.windowEnd) {
			delete(rl.entries, key)
		}
	}
}

func (rl *memoryRateLimiter) Close() {
	rl.once.Do(func() {
		close(rl.stopCh)
	})
}

// RateLimit rejects requests beyond the per-IP fixed window with 429.
func RateLimit(limiter RateLimiter, log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if !limiter.Allow(key) {
				log.Warnf("Rate limit exceeded for %s on %s", key, r.URL.Path)
				respond.Error(w, http.StatusTooManyRequests,
					"Too many requests from this IP, please try again later", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		host = "unknown"
	}
	return host
}
