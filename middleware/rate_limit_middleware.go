package middleware

import (
	"fmt"

	"golang.org/x/time/rate"

	"stomp/frame"
)

// RateLimitMiddleware throttles outbound frame submission with a token
// bucket: tokens refill at r per second up to burst, and a frame with no
// token available is rejected rather than queued, so a misbehaving
// publisher can't build unbounded backlog ahead of the writer.
//
// The limiter is constructed once per middleware installation, not per
// frame, so the bucket state is actually shared across sends.
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next SendFunc) SendFunc {
		return func(f *frame.Frame) error {
			if !limiter.Allow() {
				return fmt.Errorf("stomp: rate limit exceeded sending %s", f.Command)
			}
			return next(f)
		}
	}
}
