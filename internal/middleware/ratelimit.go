package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RealIP extracts the client's real IP address, preferring Cloudflare's
// CF-Connecting-IP header, then X-Forwarded-For, and falling back to
// RemoteAddr.
func RealIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First IP in the chain is the original client
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Tier is a named throttling policy applied to a group of routes by
// sensitivity. Counters are independent across tiers: exhausting one
// tier never blocks another.
type Tier struct {
	Name    string
	Window  time.Duration
	Limit   int
	Message string
}

var (
	// TierStrict guards brute-forceable and high-cost operations:
	// signup, login, password update, bulk delete, item update, export.
	TierStrict = Tier{
		Name:    "strict",
		Window:  5 * time.Minute,
		Limit:   10,
		Message: "Too many login/account creation attempts. Please try again in 5 minutes.",
	}

	// TierLight covers routine authenticated traffic.
	TierLight = Tier{
		Name:    "light",
		Window:  15 * time.Minute,
		Limit:   100,
		Message: "Too many requests. Please try again later.",
	}

	// TierEmailCheck throttles the email-availability probe.
	TierEmailCheck = Tier{
		Name:    "email-check",
		Window:  10 * time.Minute,
		Limit:   60,
		Message: "Too many email availability checks. Please wait and try again.",
	}
)

type entry struct {
	count    int
	windowAt time.Time
}

// RateLimiter provides in-memory fixed-window rate limiting. It is
// injected into the server rather than living as a package singleton,
// so a multi-instance deployment can swap in an external counter.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		entries: make(map[string]*entry),
	}
}

// Allow returns true if the key has not exceeded limit in the given window.
func (rl *RateLimiter) Allow(key string, limit int, window time.Duration) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	e, ok := rl.entries[key]
	if !ok || now.After(e.windowAt) {
		rl.entries[key] = &entry{count: 1, windowAt: now.Add(window)}
		return true
	}
	e.count++
	return e.count <= limit
}

// Cleanup removes expired entries.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, e := range rl.entries {
		if now.After(e.windowAt) {
			delete(rl.entries, key)
		}
	}
}

// Throttle returns middleware enforcing the tier's limit per client
// IP. A rejected request never reaches the wrapped handler.
func Throttle(limiter *RateLimiter, tier Tier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := tier.Name + ":" + RealIP(r)
			if !limiter.Allow(key, tier.Limit, tier.Window) {
				jsonMessage(w, http.StatusTooManyRequests, tier.Message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
