package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/agrisync/agrisync/infrastructure/http/response"
	"github.com/agrisync/agrisync/infrastructure/service/logger"
	"github.com/agrisync/agrisync/infrastructure/service/ratelimit"
)

// RateLimitMiddleware throttles sign-in attempts on the local API. Only
// the auth routes are limited; data routes are local reads and writes.
type RateLimitMiddleware struct {
	rateLimitService ratelimit.RateLimitService
	limit            int
	window           time.Duration
	logger           logger.Logger
}

func NewRateLimitMiddleware(rateLimitService ratelimit.RateLimitService, limit int, window time.Duration, log logger.Logger) *RateLimitMiddleware {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		limit:            limit,
		window:           window,
		logger:           log,
	}
}

func (m *RateLimitMiddleware) LimitAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if m.rateLimitService == nil || !strings.Contains(r.URL.Path, "/auth/") {
			next.ServeHTTP(w, r)
			return
		}

		clientIP := getClientIP(r)
		key := fmt.Sprintf("auth:ip:%s", clientIP)
		retryAfter := fmt.Sprintf("%d", int(m.window.Seconds()))

		blocked, err := m.rateLimitService.IsBlocked(ctx, key)
		if err == nil && blocked {
			w.Header().Set("Retry-After", retryAfter)
			response.Error(w, http.StatusTooManyRequests, "Too many attempts. Please try again later.")
			return
		}

		allowed, err := m.rateLimitService.CheckLimit(ctx, key, m.limit, m.window)
		if err == nil && !allowed {
			m.logger.Warn(ctx, "Auth rate limit exceeded", map[string]interface{}{
				"ip":   clientIP,
				"path": r.URL.Path,
			})
			if err := m.rateLimitService.Block(ctx, key, m.window, "too many auth attempts"); err != nil {
				m.logger.Error(ctx, "Failed to block client", err, nil)
			}
			w.Header().Set("Retry-After", retryAfter)
			response.Error(w, http.StatusTooManyRequests, "Too many attempts. Please try again later.")
			return
		}

		if err := m.rateLimitService.Increment(ctx, key, m.window); err != nil {
			m.logger.Error(ctx, "Failed to record auth attempt", err, nil)
		}

		next.ServeHTTP(w, r)
	})
}

func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
