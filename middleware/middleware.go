// Package middleware implements the onion-model interceptor chain the
// session runs every outbound frame through before it reaches the writer.
//
// Onion model execution order:
//
//	Chain(A, B, C)(send)  →  A(B(C(send)))
//
//	Send:  A.before → B.before → C.before → send → C.after → B.after → A.after
//
// Each middleware can do pre-processing, call next to continue the chain,
// do post-processing, or short-circuit by returning an error without
// calling next (e.g. rate limiting).
package middleware

import "stomp/frame"

// SendFunc submits one frame for delivery; both the session's raw enqueue
// and every middleware-wrapped send share this signature.
type SendFunc func(f *frame.Frame) error

// Middleware takes a SendFunc and returns a new one that wraps it.
type Middleware func(next SendFunc) SendFunc

// Chain composes middlewares into one, with the first argument as the
// outermost layer (runs first on the way in, last on the way out).
//
//	chain := Chain(Logging, RateLimit)
//	send := chain(session.rawSend)
//	// Execution: Logging → RateLimit → rawSend → RateLimit → Logging
func Chain(middlewares ...Middleware) Middleware {
	return func(next SendFunc) SendFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
