package middleware

import (
	"log"
	"time"

	"stomp/frame"
)

// LoggingMiddleware records the command, destination (if any), and outcome
// of every outbound frame.
//
// Example output:
//
//	stomp: sent SEND /queue/sullivan in 42µs
func LoggingMiddleware() Middleware {
	return func(next SendFunc) SendFunc {
		return func(f *frame.Frame) error {
			start := time.Now()
			err := next(f)
			dest, _ := f.Header("destination")
			if err != nil {
				log.Printf("stomp: send %s %s failed after %s: %v", f.Command, dest, time.Since(start), err)
				return err
			}
			log.Printf("stomp: sent %s %s in %s", f.Command, dest, time.Since(start))
			return nil
		}
	}
}
