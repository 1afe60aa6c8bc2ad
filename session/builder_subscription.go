package session

import (
	"stomp/frame"
	"stomp/header"
)

// SubscriptionBuilder accumulates options for one SUBSCRIBE, mirroring the
// original implementation's `session.subscription(dest, handler).start()`.
type SubscriptionBuilder struct {
	session     *Session
	destination string
	handler     SubscribeHandler
	ackMode     frame.AckMode
	extra       []header.Header
	onReceipt   ReceiptHandler
}

// Subscription starts building a SUBSCRIBE to destination; the default ack
// mode is Auto, matching the broker's default when the header is absent.
func (s *Session) Subscription(destination string, handler SubscribeHandler) *SubscriptionBuilder {
	return &SubscriptionBuilder{session: s, destination: destination, handler: handler, ackMode: frame.AckAuto}
}

// WithAckMode sets the subscription's acknowledgement mode.
func (b *SubscriptionBuilder) WithAckMode(mode frame.AckMode) *SubscriptionBuilder {
	b.ackMode = mode
	return b
}

// WithHeader appends an arbitrary raw header to the SUBSCRIBE frame.
func (b *SubscriptionBuilder) WithHeader(name, value string) *SubscriptionBuilder {
	b.extra = append(b.extra, header.New(name, value))
	return b
}

// WithReceipt requests a RECEIPT for the SUBSCRIBE frame and registers
// handler to run when it arrives.
func (b *SubscriptionBuilder) WithReceipt(handler ReceiptHandler) *SubscriptionBuilder {
	b.onReceipt = handler
	return b
}

// Start installs the subscription and sends SUBSCRIBE, returning the
// allocated subscription id.
func (b *SubscriptionBuilder) Start() (id string, err error) {
	id, _, err = b.session.subscribe(b.destination, b.ackMode, b.handler, b.extra, b.onReceipt)
	return id, err
}
