package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/canstralian/GitUpgradeNavigator/internal/config"
	"github.com/canstralian/GitUpgradeNavigator/internal/ratelimit"
)

// RateLimitMiddleware enforces a per-client request budget within a
// fixed window. Authenticated requests are keyed by client ID so one
// noisy integration cannot starve the others.
type RateLimitMiddleware struct {
	store ratelimit.Store
	cfg   config.RateLimitConfig
}

// NewRateLimitMiddleware creates rate limiting middleware backed by
// the given counter store
func NewRateLimitMiddleware(store ratelimit.Store, cfg config.RateLimitConfig) *RateLimitMiddleware {
	return &RateLimitMiddleware{store: store, cfg: cfg}
}

// Limit rejects requests once the client's window budget is spent.
// Must run after Authenticate so the client is on the context.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := ClientFromContext(r.Context())

		key := r.RemoteAddr
		if client != nil {
			key = fmt.Sprintf("client:%d", client.ID)
		}

		count, err := m.store.Increment(r.Context(), key, m.cfg.Window)
		if err != nil {
			// Counting failure should not take the API down
			slog.Error("rate limit store error", "error", err, "key", key)
			next.ServeHTTP(w, r)
			return
		}

		remaining := m.cfg.Requests - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.cfg.Requests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > m.cfg.Requests {
			slog.Warn("rate limit exceeded", "key", key, "count", count)
			respondError(w, http.StatusTooManyRequests, "rate_limited", "request rate limit exceeded, retry later")
			return
		}

		next.ServeHTTP(w, r)
	})
}
