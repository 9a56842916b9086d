package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/AlexFilippov-it/scanrole-api/internal/httpapi"
	"github.com/AlexFilippov-it/scanrole-api/internal/metrics"
)

// Limiter is the HTTP middleware applying per-client fixed windows before
// the auth gate runs. Identity is the token hash when a bearer token is
// present, otherwise the client IP.
type Limiter struct {
	store      Store
	limit      int
	window     time.Duration
	trustProxy bool
	log        zerolog.Logger
}

// NewLimiter configures the middleware. limit is per window per client.
func NewLimiter(store Store, limit int, window time.Duration, trustProxy bool, logger zerolog.Logger) *Limiter {
	return &Limiter{
		store:      store,
		limit:      limit,
		window:     window,
		trustProxy: trustProxy,
		log:        logger.With().Str("component", "ratelimit").Logger(),
	}
}

// Middleware rejects exhausted clients with 429 and a Retry-After header.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, tokenPrefix, hasToken := TokenIdentity(r.Header.Get("Authorization"))
		ip := ClientIP(r, l.trustProxy)
		if !hasToken {
			key = "ip:" + ip
		}

		st, err := l.store.Hit(r.Context(), "api:"+key, l.limit, l.window)
		if err != nil {
			// A broken backing store must not take the API down with it.
			l.log.Warn().Err(err).Msg("rate limit store unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(st.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(st.ResetAt.Unix(), 10))

		if !st.Allowed {
			metrics.RateLimitedTotal.Inc()
			retry := int(st.RetryAfter.Seconds() + 0.999)
			w.Header().Set("Retry-After", strconv.Itoa(retry))

			evt := l.log.Info().Str("ip", ip).Str("path", r.URL.Path)
			if hasToken {
				evt = evt.Str("token_prefix", tokenPrefix)
			}
			evt.Msg("rate limit exceeded")

			httpapi.WriteError(w, http.StatusTooManyRequests, httpapi.CodeRateLimited,
				fmt.Sprintf("Rate limit exceeded, retry in %ds", retry))
			return
		}

		next.ServeHTTP(w, r)
	})
}
