package security

import (
	"net/http"
	"sync"
	"time"
)

// RateLimiter guards outbound notification triggers. Implementations must
// be safe for concurrent checks on the same identifier. The process-local
// SlidingWindowLimiter below is the default; in a horizontally scaled
// deployment each instance enforces its limit independently, which is the
// accepted degraded mode. A shared-counter backend can be substituted
// here without touching call sites.
type RateLimiter interface {
	// Check counts one request for the identifier and reports whether the
	// limit is exceeded, along with the time the window resets. Rejected
	// requests are counted too.
	Check(identifier string) (exceeded bool, resetAt time.Time)
}

// SlidingWindowLimiter is a window-reset request counter: each identifier
// holds a (count, resetTime) pair, reset whenever a check arrives after
// the window expired.
type SlidingWindowLimiter struct {
	entries map[string]*windowEntry
	mu      sync.Mutex
	max     int           // requests allowed per window
	window  time.Duration // window length
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

// NewSlidingWindowLimiter creates a limiter allowing max requests per window
func NewSlidingWindowLimiter(max int, window time.Duration) *SlidingWindowLimiter {
	rl := &SlidingWindowLimiter{
		entries: make(map[string]*windowEntry),
		max:     max,
		window:  window,
	}
	// Periodic purge of stale entries to bound memory
	go rl.purgeStale()
	return rl
}

// Check counts the request and reports whether the identifier exceeded its
// window. The count is incremented even when the limit is exceeded; that
// keeps window semantics simple and bounds worst-case memory, at the cost
// of not being a strict token bucket.
func (rl *SlidingWindowLimiter) Check(identifier string) (bool, time.Time) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.entries[identifier]
	if !exists || now.After(entry.resetAt) {
		rl.entries[identifier] = &windowEntry{count: 1, resetAt: now.Add(rl.window)}
		return false, now.Add(rl.window)
	}

	entry.count++
	return entry.count > rl.max, entry.resetAt
}

// purgeStale removes entries whose window has long passed. Purge frequency
// is a housekeeping concern only, never a safety one.
func (rl *SlidingWindowLimiter) purgeStale() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		rl.mu.Lock()
		for id, entry := range rl.entries {
			if now.After(entry.resetAt) {
				delete(rl.entries, id)
			}
		}
		rl.mu.Unlock()
	}
}

// GetClientIP extracts the client IP from the request, used as the
// rate-limit identifier when no authenticated operator is available
func GetClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (when behind proxy)
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		return forwarded
	}

	// Check X-Real-IP header
	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	// Fall back to RemoteAddr
	return r.RemoteAddr
}
