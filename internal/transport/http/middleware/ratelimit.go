package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"p9ify/internal/transport/http/api"
	"p9ify/internal/transport/http/shared"
)

const (
	staleLimiterAfter = 10 * time.Minute
	sweepEvery        = 5 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter keeps one token bucket per client address.
type clientLimiter struct {
	mu        sync.Mutex
	perMinute int
	clients   map[string]*limiterEntry
	lastSweep time.Time
	now       func() time.Time
}

func newClientLimiter(perMinute int) *clientLimiter {
	return &clientLimiter{
		perMinute: perMinute,
		clients:   map[string]*limiterEntry{},
		now:       time.Now,
	}
}

func (cl *clientLimiter) get(key string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	now := cl.now()
	if now.Sub(cl.lastSweep) > sweepEvery {
		for k, entry := range cl.clients {
			if now.Sub(entry.lastSeen) > staleLimiterAfter {
				delete(cl.clients, k)
			}
		}
		cl.lastSweep = now
	}
	entry, ok := cl.clients[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cl.perMinute)), cl.perMinute)}
		cl.clients[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func (cl *clientLimiter) enforce(w http.ResponseWriter, r *http.Request) bool {
	if cl.perMinute <= 0 {
		return true
	}
	key := shared.ClientIP(r)
	limiter := cl.get(key)
	allowed := limiter.Allow()
	remaining := int(math.Max(0, math.Floor(limiter.Tokens())))

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cl.perMinute))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if allowed {
		return true
	}

	retryAfter := int(math.Ceil(time.Minute.Seconds() / float64(cl.perMinute)))
	w.Header().Set("Retry-After", strconv.Itoa(max(retryAfter, 1)))
	slog.Warn("rate limit exceeded",
		"key", key,
		"path", r.URL.Path,
		"method", r.Method,
		"limitPerMinute", cl.perMinute,
	)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

// RateLimit allows perMinute requests per client address with an equal burst.
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	cl := newClientLimiter(perMinute)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cl.enforce(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SensitiveRateLimit applies a quarter of the base limit to token requests
// and half of it to bulk data operations.
func SensitiveRateLimit(baseLimit int) func(http.Handler) http.Handler {
	authLimiter := newClientLimiter(max(baseLimit/4, 1))
	dataLimiter := newClientLimiter(max(baseLimit/2, 1))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch sensitiveRateScope(r) {
			case sensitiveScopeAuth:
				if !authLimiter.enforce(w, r) {
					return
				}
			case sensitiveScopeData:
				if !dataLimiter.enforce(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

type sensitiveScope string

const (
	sensitiveScopeNone sensitiveScope = ""
	sensitiveScopeAuth sensitiveScope = "auth"
	sensitiveScopeData sensitiveScope = "data"
)

func sensitiveRateScope(r *http.Request) sensitiveScope {
	method := strings.ToUpper(strings.TrimSpace(r.Method))
	if method != http.MethodPost && method != http.MethodPut && method != http.MethodDelete {
		return sensitiveScopeNone
	}
	path := strings.TrimPrefix(strings.TrimSpace(r.URL.Path), "/api/v1")
	switch {
	case path == "/auth/token" || strings.HasPrefix(path, "/auth/mfa"):
		return sensitiveScopeAuth
	case path == "/data" || path == "/data/import" || path == "/data/integrity/repair":
		return sensitiveScopeData
	case strings.HasPrefix(path, "/data/backups"):
		return sensitiveScopeData
	}
	return sensitiveScopeNone
}
