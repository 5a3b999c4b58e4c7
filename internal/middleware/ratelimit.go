package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// RateLimiter is a process-wide token bucket in front of the API.
// Statistics queries over a large city can take a while, so the bucket keeps a
// burst of clients from queueing many of them at once.
type RateLimiter struct {
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewRateLimiter allows rps requests per second with bursts of up to burst.
// A non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int, log *slog.Logger) *RateLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, max(burst, 1)),
		log:     log,
	}
}

// Handler rejects requests with 429 once the bucket is empty.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.limiter.Allow() {
			rl.log.WarnContext(r.Context(), "rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
			w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter()))
			reject(w, r, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// retryAfter is the whole number of seconds until one token is available.
func (rl *RateLimiter) retryAfter() int {
	if rl.limiter.Limit() == rate.Inf || rl.limiter.Limit() <= 0 {
		return 1
	}
	wait := time.Duration(float64(time.Second) / float64(rl.limiter.Limit()))
	return max(int(wait.Round(time.Second)/time.Second), 1)
}
