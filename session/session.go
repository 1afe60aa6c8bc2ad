// Package session implements the STOMP session state machine: the
// subscription and receipt tables, identifier allocation, the dispatcher
// that routes inbound frames, and the reader/writer goroutines that make
// up the I/O fabric around a single connection.
//
// Concurrency model: a Session runs two background goroutines (reader,
// writer) for as long as it's connected. All shared mutable state —
// subscriptions, receipt handlers, the error callback — is guarded by one
// mutex rather than funneled through a third goroutine, the direct
// analogue of the teacher's ClientTransport.pending map guarded by its own
// lock. Listen runs the dispatcher on the caller's own goroutine; it
// never spawns one of its own.
package session

import (
	"bytes"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"stomp/codec"
	"stomp/connection"
	"stomp/frame"
	"stomp/header"
	"stomp/middleware"
)

// DefaultGracePeriod is the multiplier applied to the negotiated receive
// heartbeat interval before the reader treats a silent connection as a
// miss, matching the original implementation's fixed 2.0 constant.
const DefaultGracePeriod = 2.0

// AckDecision is a subscribe handler's verdict on a delivered MESSAGE.
type AckDecision int

const (
	Ack AckDecision = iota
	Nack
)

// SubscribeHandler processes one delivered MESSAGE frame and decides
// whether to acknowledge or reject it (ignored in AckAuto mode).
type SubscribeHandler func(f *frame.Frame) AckDecision

// ReceiptHandler is invoked once when the RECEIPT matching its id arrives.
type ReceiptHandler func(f *frame.Frame)

// ErrorHandler is invoked for every inbound ERROR frame.
type ErrorHandler func(f *frame.Frame)

type subscriptionEntry struct {
	destination string
	ackMode     frame.AckMode
	handler     SubscribeHandler
}

// inboundEvent is what the reader goroutine hands to Listen: either a
// decoded transmission, or (exactly once, as the last event before the
// channel closes) the terminal error that ended the session.
type inboundEvent struct {
	t   frame.Transmission
	err error
}

// Session owns one negotiated connection plus everything the dispatcher
// needs: the three monotonic id counters, the subscription and receipt
// tables, the error callback, and the outbound send chain.
type Session struct {
	conn        net.Conn
	txInterval  time.Duration
	rxInterval  time.Duration
	gracePeriod float64

	nextTransactionID counter
	nextSubscriptionID counter
	nextReceiptID      counter

	mu            sync.Mutex
	subscriptions map[string]subscriptionEntry
	receipts      map[string]ReceiptHandler
	errorHandler  ErrorHandler

	outbound chan *frame.Frame
	inbound  chan inboundEvent
	done     chan struct{}

	closeOnce sync.Once

	stats Stats

	middlewares []middleware.Middleware
	rawSend     middleware.SendFunc // outbound queue submission, pre-middleware
	send        middleware.SendFunc // middleware-wrapped submission used by operations
}

// newSession wires a freshly handshaked connection into a running Session:
// the outbound/inbound channels, the two I/O goroutines, and the default
// error callback (logs the ERROR frame, mirroring the original's
// default_error_callback).
func newSession(c *connection.Connection, gracePeriod float64) *Session {
	s := &Session{
		conn:          c.Conn,
		txInterval:    c.TxInterval,
		rxInterval:    c.RxInterval,
		gracePeriod:   gracePeriod,
		subscriptions: make(map[string]subscriptionEntry),
		receipts:      make(map[string]ReceiptHandler),
		outbound:      make(chan *frame.Frame, 64),
		inbound:       make(chan inboundEvent, 1),
		done:          make(chan struct{}),
	}
	s.errorHandler = s.defaultErrorHandler
	s.rawSend = s.enqueue
	s.send = s.rawSend
	go s.writeLoop()
	go s.readLoop()
	return s
}

func (s *Session) defaultErrorHandler(f *frame.Frame) {
	msg, _ := header.Message(f.Headers)
	log.Printf("stomp: ERROR received: %s", msg)
}

// Use installs a send-side middleware. Middlewares added earlier wrap those
// added later, so the chain runs in the order Use was called (the first
// one registered is outermost). Use is not safe to call concurrently with
// in-flight sends; install middlewares before the application starts
// issuing them.
func (s *Session) Use(mw middleware.Middleware) {
	s.middlewares = append(s.middlewares, mw)
	s.send = middleware.Chain(s.middlewares...)(s.rawSend)
}

// OnError replaces the callback invoked for inbound ERROR frames.
func (s *Session) OnError(h ErrorHandler) {
	s.mu.Lock()
	s.errorHandler = h
	s.mu.Unlock()
}

// enqueue is the base SendFunc: it places a frame on the bounded outbound
// queue, blocking the caller if it's full (deliberate backpressure, not a
// silent drop) — unless the session has already been torn down, in which
// case it returns an error instead of blocking forever on a queue nobody
// will ever drain again.
func (s *Session) enqueue(f *frame.Frame) error {
	select {
	case <-s.done:
		return fmt.Errorf("stomp/session: session closed")
	default:
	}
	select {
	case s.outbound <- f:
		return nil
	case <-s.done:
		return fmt.Errorf("stomp/session: session closed")
	}
}

// closeConn closes the underlying socket and signals done exactly once;
// whichever side (the reader or the writer) first sees a fatal error calls
// this to unblock the other, and enqueue consults done to stop accepting
// new work once it's been called.
func (s *Session) closeConn() {
	s.closeOnce.Do(func() {
		s.conn.Close()
		close(s.done)
	})
}

// Disconnect sends DISCONNECT and closes the connection. With no argument,
// it closes as soon as DISCONNECT is enqueued. Given an onReceipt handler,
// it instead requests a RECEIPT, leaves the connection open so the
// dispatcher (driven by Listen) can still deliver it, invokes the handler
// once it arrives, and closes only then.
func (s *Session) Disconnect(onReceipt ...ReceiptHandler) error {
	var handler ReceiptHandler
	if len(onReceipt) > 0 {
		handler = onReceipt[0]
	}

	f := frame.Disconnect()
	var receiptID string
	if handler != nil {
		receiptID = s.nextReceiptID.next()
		f.AddHeader(header.NameReceipt, receiptID)
		s.mu.Lock()
		s.receipts[receiptID] = func(rf *frame.Frame) {
			handler(rf)
			s.closeConn()
		}
		s.mu.Unlock()
	}

	if err := s.send(f); err != nil {
		if handler != nil {
			s.mu.Lock()
			delete(s.receipts, receiptID)
			s.mu.Unlock()
		}
		return err
	}
	if handler == nil {
		s.closeConn()
	}
	return nil
}

// Listen runs the dispatcher on the calling goroutine until the session
// ends (clean disconnect, protocol error, or transport error), returning
// nil only when the inbound channel closed without a terminal error.
func (s *Session) Listen() error {
	for ev := range s.inbound {
		if ev.err != nil {
			return ev.err
		}
		if ev.t.Heartbeat {
			s.stats.heartbeatsRecv.Add(1)
			continue
		}
		if err := s.dispatch(ev.t.Frame); err != nil {
			s.closeConn()
			go func() {
				for range s.inbound {
				}
			}()
			return err
		}
	}
	return nil
}

func (s *Session) dispatch(f *frame.Frame) error {
	if !frame.IsServerCommand(f.Command) {
		return fmt.Errorf("stomp/session: protocol error: unexpected inbound command %s", f.Command)
	}
	s.stats.recordRecv(f.Command)
	switch f.Command {
	case frame.CmdError:
		s.mu.Lock()
		h := s.errorHandler
		s.mu.Unlock()
		h(f)
		return nil
	case frame.CmdReceipt:
		return s.dispatchReceipt(f)
	case frame.CmdMessage:
		return s.dispatchMessage(f)
	default:
		return fmt.Errorf("stomp/session: protocol error: unexpected inbound command %s", f.Command)
	}
}

func (s *Session) dispatchReceipt(f *frame.Frame) error {
	id, ok := header.ReceiptID(f.Headers)
	if !ok {
		return fmt.Errorf("stomp/session: protocol error: RECEIPT frame missing receipt-id")
	}
	s.mu.Lock()
	h, ok := s.receipts[id]
	if ok {
		delete(s.receipts, id)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("stomp/session: protocol error: RECEIPT for unknown id %q", id)
	}
	h(f)
	return nil
}

func (s *Session) dispatchMessage(f *frame.Frame) error {
	subID, ok := header.Subscription(f.Headers)
	if !ok {
		return fmt.Errorf("stomp/session: protocol error: MESSAGE frame missing subscription header")
	}
	s.mu.Lock()
	entry, ok := s.subscriptions[subID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("stomp/session: protocol error: MESSAGE for unknown subscription %q", subID)
	}

	decision := entry.handler(f)
	if entry.ackMode == frame.AckAuto {
		return nil
	}
	ackID, ok := header.Ack(f.Headers)
	if !ok {
		return fmt.Errorf("stomp/session: protocol error: MESSAGE in %s mode missing ack header", entry.ackMode)
	}
	var ackFrame *frame.Frame
	if decision == Ack {
		ackFrame = frame.Ack(ackID)
	} else {
		ackFrame = frame.Nack(ackID)
	}
	return s.send(ackFrame)
}

// readLoop owns the socket's read side: it grows a buffer, decodes
// transmissions out of it, and hands each to Listen via the inbound
// channel. When the receive heartbeat interval is positive, it arms a
// read deadline at rxInterval*gracePeriod; a single timeout is logged as
// a missed heartbeat, a second consecutive one is fatal.
func (s *Session) readLoop() {
	defer func() {
		s.closeConn()
		close(s.inbound)
	}()

	var buf bytes.Buffer
	chunk := make([]byte, 4096)
	missed := 0

	armDeadline := func() {
		if s.rxInterval > 0 {
			s.conn.SetReadDeadline(time.Now().Add(time.Duration(float64(s.rxInterval) * s.gracePeriod)))
		}
	}
	armDeadline()

	for {
		for {
			t, ok, err := codec.Decode(&buf)
			if err != nil {
				s.inbound <- inboundEvent{err: fmt.Errorf("stomp/session: protocol error: %w", err)}
				return
			}
			if !ok {
				break
			}
			missed = 0
			armDeadline()
			s.inbound <- inboundEvent{t: t}
		}

		n, err := s.conn.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			continue
		}
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() && s.rxInterval > 0 {
				missed++
				s.stats.heartbeatsMissed.Add(1)
				log.Printf("stomp: missed expected heartbeat (%d consecutive)", missed)
				if missed >= 2 {
					s.inbound <- inboundEvent{err: fmt.Errorf("stomp/session: missed %d consecutive heartbeats", missed)}
					return
				}
				armDeadline()
				continue
			}
			s.inbound <- inboundEvent{err: fmt.Errorf("stomp/session: read: %w", err)}
			return
		}
	}
}

// writeLoop owns the socket's write side: it drains the outbound queue,
// encoding and writing each frame, and — when the send heartbeat interval
// is positive — emits a bare heartbeat on a timer reset by every write.
func (s *Session) writeLoop() {
	defer s.closeConn()

	var timerC <-chan time.Time
	var timer *time.Timer
	if s.txInterval > 0 {
		timer = time.NewTimer(s.txInterval)
		defer timer.Stop()
		timerC = timer.C
	}

	heartbeatSend := middleware.RetryMiddleware(1, 20*time.Millisecond)(func(*frame.Frame) error {
		return codec.EncodeHeartbeat(s.conn)
	})

	resetTimer := func() {
		if timer == nil {
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(s.txInterval)
	}

	for {
		select {
		case f, ok := <-s.outbound:
			if !ok {
				return
			}
			if err := codec.Encode(s.conn, f); err != nil {
				log.Printf("stomp: write failed: %v", err)
				return
			}
			s.stats.recordSent(f.Command)
			resetTimer()
		case <-timerC:
			if err := heartbeatSend(nil); err != nil {
				log.Printf("stomp: heartbeat write failed: %v", err)
				return
			}
			s.stats.heartbeatsSent.Add(1)
			resetTimer()
		case <-s.done:
			// The reader (or Disconnect) tore the connection down; there is
			// nothing left to drain the outbound queue for, so stop.
			return
		}
	}
}
