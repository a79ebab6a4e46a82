package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/chybatronik/goUsersTable/internal/logging"
)

const (
	visitorTTL      = 10 * time.Minute
	cleanupInterval = 5 * time.Minute
)

// RateLimiter limits requests per client IP with one token bucket per visitor
type RateLimiter struct {
	visitors map[string]*Visitor
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	window   time.Duration
	logger   *logging.Logger
}

// Visitor tracks rate limiting state for a single IP
type Visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows requests per window for each IP, with the whole window's
// allowance available as a burst. requests <= 0 disables limiting.
func NewRateLimiter(requests int, window time.Duration, logger *logging.Logger) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*Visitor),
		window:   window,
		logger:   logger,
	}
	if requests > 0 && window > 0 {
		rl.rate = rate.Every(window / time.Duration(requests))
		rl.burst = requests
	}
	return rl
}

// Middleware wraps next with the limiter
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if ip == "" {
			rl.logger.Warn("rate limiting: unable to extract client IP", "remote_addr", r.RemoteAddr)
			next.ServeHTTP(w, r)
			return
		}

		if !rl.Allow(ip) {
			rl.logger.WithRequestID(GetRequestID(r.Context())).Warn("rate limit exceeded", "client_ip", ip)
			w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfterSeconds()))
			writeJSONError(w, http.StatusTooManyRequests, "Too many requests", "RATE_LIMIT_EXCEEDED", "")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// retryAfterSeconds is the window rounded up to whole seconds, at least 1
func (rl *RateLimiter) retryAfterSeconds() int {
	return max(1, int(math.Ceil(rl.window.Seconds())))
}

// Allow checks if an IP is allowed to make a request
func (rl *RateLimiter) Allow(ip string) bool {
	if rl.rate == 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	visitor, exists := rl.visitors[ip]
	if !exists {
		visitor = &Visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[ip] = visitor
	}
	visitor.lastSeen = time.Now()
	return visitor.limiter.Allow()
}

// Visitors returns the number of tracked IPs
func (rl *RateLimiter) Visitors() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Run evicts idle visitors until ctx is done
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.evict(now.Add(-visitorTTL))
		}
	}
}

func (rl *RateLimiter) evict(before time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, visitor := range rl.visitors {
		if visitor.lastSeen.Before(before) {
			delete(rl.visitors, ip)
		}
	}
}

// extractIP extracts the real client IP from request
func extractIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs, the first one is the client
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if isValidIP(ip) {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" && isValidIP(xri) {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if isValidIP(r.RemoteAddr) {
			return r.RemoteAddr
		}
		return ""
	}

	if isValidIP(host) {
		return host
	}
	return ""
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
