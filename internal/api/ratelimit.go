package api

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mybglist/mybglist-server/internal/ratelimit"
)

// rateLimitMiddleware limits an operation per client IP.
// Returns 429 Too Many Requests when the limit is exceeded.
func rateLimitMiddleware(api huma.API, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		key := clientIP(ctx.Header, ctx.RemoteAddr())
		if !limiter.Allow(key) {
			logger.Warn("rate limit exceeded", "ip", key, "path", ctx.URL().Path)
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "too many requests, try again later")
			return
		}
		next(ctx)
	}
}

// clientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func clientIP(header func(string) string, remoteAddr string) string {
	// First entry of X-Forwarded-For is the client.
	if xff := header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := header("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
