package session

import "stomp/frame"

// MessageBuilder accumulates options for one outgoing SEND, mirroring the
// original implementation's `session.message(dest, body).with(...).send()`
// chain.
type MessageBuilder struct {
	session     *Session
	destination string
	body        []byte
	opts        []frame.SendOption
	onReceipt   ReceiptHandler
}

// Message starts building a SEND frame to destination.
func (s *Session) Message(destination string, body []byte) *MessageBuilder {
	return &MessageBuilder{session: s, destination: destination, body: body}
}

// WithContentType sets the content-type header.
func (b *MessageBuilder) WithContentType(contentType string) *MessageBuilder {
	b.opts = append(b.opts, frame.WithContentType(contentType))
	return b
}

// WithHeader appends an arbitrary raw header.
func (b *MessageBuilder) WithHeader(name, value string) *MessageBuilder {
	b.opts = append(b.opts, frame.WithCustomHeader(name, value))
	return b
}

// WithSuppressedHeader omits a default header the builder would otherwise
// set (most commonly content-length, for brokers that infer it).
func (b *MessageBuilder) WithSuppressedHeader(name string) *MessageBuilder {
	b.opts = append(b.opts, frame.WithSuppressedHeader(name))
	return b
}

// WithTransaction marks this SEND as part of an open transaction.
func (b *MessageBuilder) WithTransaction(t *Transaction) *MessageBuilder {
	b.opts = append(b.opts, frame.WithTransaction(t.id))
	return b
}

// WithReceipt requests a RECEIPT for this frame and registers handler to
// run when it arrives.
func (b *MessageBuilder) WithReceipt(handler ReceiptHandler) *MessageBuilder {
	b.onReceipt = handler
	return b
}

// Send submits the frame and returns the allocated receipt id, if one was
// requested.
func (b *MessageBuilder) Send() (receiptID string, err error) {
	return b.session.doSend(b.destination, b.body, b.opts, b.onReceipt)
}
