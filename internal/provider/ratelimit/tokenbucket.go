package ratelimit

import (
	"time"

	"golang.org/x/time/rate"
)

// NewLimiter builds a token bucket from a per-minute budget.
// When requestsPerMinute is zero, minInterval spaces out requests instead.
// It returns nil (unlimited) when neither is set.
func NewLimiter(requestsPerMinute, burst int, minInterval time.Duration) *rate.Limiter {
	if burst <= 0 {
		burst = 1
	}
	switch {
	case requestsPerMinute > 0:
		return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
	case minInterval > 0:
		return rate.NewLimiter(rate.Every(minInterval), 1)
	}
	return nil
}
