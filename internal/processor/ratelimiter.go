package processor

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/pubdash/classifier/internal/logging"
)

// RateLimiter throttles calls to the external title-repair service so a
// large batch cannot hammer it. Classification itself is never throttled.
type RateLimiter struct {
	limiter *rate.Limiter
	logger  logging.Logger
}

// NewRateLimiter creates a limiter allowing rps requests per second with the
// given burst size.
func NewRateLimiter(rps, burst int, logger logging.Logger) *RateLimiter {
	if rps <= 0 {
		rps = 100
	}
	if burst <= 0 {
		burst = rps
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
	}
}

// Wait blocks until the limiter allows one call or the context is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		r.logger.Warn("rate limiter wait aborted", logging.Error(err))
		return err
	}
	return nil
}

// Allow reports whether a call may proceed right now without waiting.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// SetLimit updates the sustained rate.
func (r *RateLimiter) SetLimit(rps int) {
	r.limiter.SetLimit(rate.Limit(rps))
	r.logger.Info("rate limit updated", logging.Int("rps", rps))
}
