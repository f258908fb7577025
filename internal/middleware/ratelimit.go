package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

type bucket struct {
	hits     int
	windowAt time.Time
}

// RateLimiter is a fixed-window per-address limiter. State lives in
// process memory, which is enough for the auth endpoints it guards.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
	}
	go rl.evictStale()
	return rl
}

func (rl *RateLimiter) evictStale() {
	ticker := time.NewTicker(rl.window)
	for range ticker.C {
		rl.mu.Lock()
		for addr, b := range rl.buckets {
			if time.Since(b.windowAt) > rl.window {
				delete(rl.buckets, addr)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := clientAddr(r)

		rl.mu.Lock()
		b, ok := rl.buckets[addr]
		if !ok || time.Since(b.windowAt) > rl.window {
			rl.buckets[addr] = &bucket{hits: 1, windowAt: time.Now()}
			rl.mu.Unlock()
			next.ServeHTTP(w, r)
			return
		}
		b.hits++
		hits := b.hits
		rl.mu.Unlock()

		if hits > rl.limit {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientAddr(r *http.Request) string {
	// RealIP middleware rewrites RemoteAddr when proxy headers are
	// present, so only the port suffix needs stripping here.
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx > 0 {
		return addr[:idx]
	}
	return addr
}
