package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// keyedLimiter manages per-client token buckets. Idle clients are evicted
// by a background sweep so the map stays bounded.
type keyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	idle     time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newKeyedLimiter creates a limiter allowing rps requests per second per key
// with the given burst. Keys unused for idle are forgotten.
func newKeyedLimiter(rps float64, burst int, idle time.Duration) *keyedLimiter {
	kl := &keyedLimiter{
		limiters: make(map[string]*clientLimiter),
		limit:    rate.Limit(rps),
		burst:    burst,
		idle:     idle,
		done:     make(chan struct{}),
	}
	go kl.cleanup()
	return kl
}

// Allow reports whether a request for key may proceed now.
func (kl *keyedLimiter) Allow(key string) bool {
	return kl.get(key, time.Now()).Allow()
}

func (kl *keyedLimiter) get(key string, now time.Time) *rate.Limiter {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	cl, ok := kl.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(kl.limit, kl.burst)}
		kl.limiters[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// sweep drops keys not seen since before cutoff and returns how many remain.
func (kl *keyedLimiter) sweep(cutoff time.Time) int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	for key, cl := range kl.limiters {
		if cl.lastSeen.Before(cutoff) {
			delete(kl.limiters, key)
		}
	}
	return len(kl.limiters)
}

func (kl *keyedLimiter) cleanup() {
	ticker := time.NewTicker(kl.idle)
	defer ticker.Stop()
	for {
		select {
		case <-kl.done:
			return
		case now := <-ticker.C:
			kl.sweep(now.Add(-kl.idle))
		}
	}
}

// Stop shuts down the cleanup goroutine.
func (kl *keyedLimiter) Stop() {
	kl.stopOnce.Do(func() {
		close(kl.done)
	})
}

// rateLimit rejects clients over their budget with 429. The key is the
// remote address, which middleware.RealIP has already resolved.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		if !s.limiter.Allow(key) {
			s.logger.Warn("rate limit exceeded", "ip", key, "path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			tooManyRequests(w, "Too many requests. Please try again later.", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
