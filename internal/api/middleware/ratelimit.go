package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Rrens/chatbot-pro/internal/api/response"
	"github.com/rs/zerolog/log"
)

// Limiter counts hits per key
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, int, time.Time, error)
	Limit() int
}

// KeyFunc derives the rate limit key of a request. An empty key skips limiting.
type KeyFunc func(r *http.Request) string

// RejectFunc writes the 429 response
type RejectFunc func(w http.ResponseWriter)

// RateLimitMiddleware handles rate limiting
type RateLimitMiddleware struct {
	limiter Limiter
	key     KeyFunc
	reject  RejectFunc
}

// NewRateLimitMiddleware creates a new rate limit middleware. A nil limiter
// turns it into a pass-through.
func NewRateLimitMiddleware(limiter Limiter, key KeyFunc, reject RejectFunc) *RateLimitMiddleware {
	if reject == nil {
		reject = func(w http.ResponseWriter) {
			response.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		}
	}
	return &RateLimitMiddleware{limiter: limiter, key: key, reject: reject}
}

// Limit applies rate limiting
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := m.key(r)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		allowed, remaining, resetTime, err := m.limiter.Allow(r.Context(), key)
		if err != nil {
			// Fail open: a Redis outage must not take the widget down
			log.Warn().Err(err).Str("request_id", response.RequestID(r)).Msg("Rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.limiter.Limit()))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(resetTime).Seconds())+1))
			m.reject(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ByAccount keys requests by the authenticated account
func ByAccount(r *http.Request) string {
	accountID, ok := GetAccountID(r.Context())
	if !ok {
		return ""
	}
	return accountID.String()
}

// ByClientIP keys requests by the client address. Expects RealIP to run first.
func ByClientIP(r *http.Request) string {
	return r.RemoteAddr
}
