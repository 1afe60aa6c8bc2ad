package middleware

import (
	"errors"
	"log"
	"net"
	"time"

	"stomp/frame"
)

// RetryMiddleware retries a send a bounded number of times on transient
// network errors, with exponential backoff from baseDelay. It is not
// installed on the session's outbound chain — sending a frame twice would
// duplicate it on the broker, and reconnection after a dropped socket is
// out of scope for the session itself. The I/O fabric uses it only to
// wrap its own bare-heartbeat writes, where resending is harmless and a
// single slow write shouldn't trip the heartbeat-miss detector.
func RetryMiddleware(maxRetries int, baseDelay time.Duration) Middleware {
	return func(next SendFunc) SendFunc {
		return func(f *frame.Frame) error {
			err := next(f)
			for i := 0; i < maxRetries && isRetryable(err); i++ {
				log.Printf("stomp: retry %d sending %s after: %v", i+1, commandOf(f), err)
				time.Sleep(baseDelay * time.Duration(1<<i))
				err = next(f)
			}
			return err
		}
	}
}

// commandOf reports f's command for logging, tolerating a nil frame (the
// I/O fabric retries bare heartbeat writes, which have no frame).
func commandOf(f *frame.Frame) frame.Command {
	if f == nil {
		return "heartbeat"
	}
	return f.Command
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
