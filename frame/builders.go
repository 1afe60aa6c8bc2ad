package frame

import (
	"strconv"

	"stomp/header"
)

// Connect builds a CONNECT frame offering acceptVersion, host, and the given
// heart-beat proposal, with optional credentials and caller-supplied extra
// headers appended last.
func Connect(acceptVersion, host string, hb header.HeartBeat, login, passcode string, extra ...header.Header) *Frame {
	f := New(CmdConnect).
		AddHeader(header.NameAcceptVersion, acceptVersion).
		AddHeader(header.NameHost, host).
		AddHeader(header.NameHeartBeat, hb.String())
	if login != "" {
		f.AddHeader(header.NameLogin, login)
	}
	if passcode != "" {
		f.AddHeader(header.NamePasscode, passcode)
	}
	for _, h := range extra {
		f.AddHeader(h.Name, h.Value)
	}
	return f
}

// SendOption mutates a SEND frame as it is built; used by the session's
// message builder to layer optional headers on top of the canonical set.
type SendOption func(*Frame)

// Send builds a SEND frame with the canonical destination and content-length
// headers, then applies opts in order. A later SuppressedHeader option can
// remove content-length again.
func Send(destination string, body []byte, opts ...SendOption) *Frame {
	f := New(CmdSend).
		AddHeader(header.NameDestination, destination).
		AddHeader(header.NameContentLength, strconv.Itoa(len(body)))
	f.Body = body
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithContentType sets the content-type header.
func WithContentType(contentType string) SendOption {
	return func(f *Frame) { f.AddHeader(header.NameContentType, contentType) }
}

// WithCustomHeader appends an arbitrary raw header.
func WithCustomHeader(name, value string) SendOption {
	return func(f *Frame) { f.AddHeader(name, value) }
}

// WithReceipt sets the receipt header to the given id.
func WithReceipt(receiptID string) SendOption {
	return func(f *Frame) { f.AddHeader(header.NameReceipt, receiptID) }
}

// WithTransaction tags the frame as part of an open transaction.
func WithTransaction(txID string) SendOption {
	return func(f *Frame) { f.AddHeader(header.NameTransaction, txID) }
}

// WithSuppressedHeader removes every occurrence of a default header the
// builder would otherwise set, e.g. content-length.
func WithSuppressedHeader(name string) SendOption {
	return func(f *Frame) {
		kept := f.Headers[:0]
		for _, h := range f.Headers {
			if h.Name != name {
				kept = append(kept, h)
			}
		}
		f.Headers = kept
	}
}

// AckMode is the per-subscription acknowledgement policy.
type AckMode string

const (
	AckAuto             AckMode = "auto"
	AckClient           AckMode = "client"
	AckClientIndividual AckMode = "client-individual"
)

// SubscribeOption mutates a SUBSCRIBE frame as it is built.
type SubscribeOption func(*Frame)

// Subscribe builds a SUBSCRIBE frame with the canonical id, destination, and
// ack headers, then applies opts (additional headers, receipts) in order.
func Subscribe(id, destination string, ackMode AckMode, opts ...SubscribeOption) *Frame {
	f := New(CmdSubscribe).
		AddHeader(header.NameID, id).
		AddHeader(header.NameDestination, destination).
		AddHeader(header.NameAck, string(ackMode))
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Unsubscribe builds an UNSUBSCRIBE frame for the given subscription id.
func Unsubscribe(id string) *Frame {
	return New(CmdUnsubscribe).AddHeader(header.NameID, id)
}

// Ack builds an ACK frame carrying the given ack id.
func Ack(ackID string) *Frame {
	return New(CmdAck).AddHeader(header.NameID, ackID)
}

// Nack builds a NACK frame carrying the given ack id.
func Nack(ackID string) *Frame {
	return New(CmdNack).AddHeader(header.NameID, ackID)
}

// Begin builds a BEGIN frame for the given transaction id.
func Begin(txID string) *Frame {
	return New(CmdBegin).AddHeader(header.NameTransaction, txID)
}

// Commit builds a COMMIT frame for the given transaction id.
func Commit(txID string) *Frame {
	return New(CmdCommit).AddHeader(header.NameTransaction, txID)
}

// Abort builds an ABORT frame for the given transaction id.
func Abort(txID string) *Frame {
	return New(CmdAbort).AddHeader(header.NameTransaction, txID)
}

// Disconnect builds a header-less DISCONNECT frame; callers that want a
// receipt for it should append one via AddHeader before enqueuing.
func Disconnect() *Frame {
	return New(CmdDisconnect)
}
