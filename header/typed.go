package header

import (
	"fmt"
	"strconv"
	"strings"
)

// Well-known header names used throughout the protocol.
const (
	NameContentType   = "content-type"
	NameContentLength = "content-length"
	NameDestination   = "destination"
	NameID            = "id"
	NameAck           = "ack"
	NameSubscription  = "subscription"
	NameReceipt       = "receipt"
	NameReceiptID     = "receipt-id"
	NameHeartBeat     = "heart-beat"
	NameHost          = "host"
	NameLogin         = "login"
	NamePasscode      = "passcode"
	NameAcceptVersion = "accept-version"
	NameVersion       = "version"
	NameSession       = "session"
	NameServer        = "server"
	NameMessageID     = "message-id"
	NameTransaction   = "transaction"
	NameMessage       = "message"
)

// Message returns the message header (a short human-readable description,
// typically set on ERROR frames), if present.
func Message(l List) (string, bool) { return l.Get(NameMessage) }

// ContentType returns the content-type header, if present.
func ContentType(l List) (string, bool) { return l.Get(NameContentType) }

// Destination returns the destination header, if present.
func Destination(l List) (string, bool) { return l.Get(NameDestination) }

// ID returns the id header, if present.
func ID(l List) (string, bool) { return l.Get(NameID) }

// Ack returns the ack header, if present.
func Ack(l List) (string, bool) { return l.Get(NameAck) }

// Subscription returns the subscription header, if present.
func Subscription(l List) (string, bool) { return l.Get(NameSubscription) }

// ReceiptID returns the receipt-id header, if present.
func ReceiptID(l List) (string, bool) { return l.Get(NameReceiptID) }

// Host returns the host header, if present.
func Host(l List) (string, bool) { return l.Get(NameHost) }

// Login returns the login header, if present.
func Login(l List) (string, bool) { return l.Get(NameLogin) }

// Passcode returns the passcode header, if present.
func Passcode(l List) (string, bool) { return l.Get(NamePasscode) }

// AcceptVersion returns the accept-version header, if present.
func AcceptVersion(l List) (string, bool) { return l.Get(NameAcceptVersion) }

// Version returns the version header, if present.
func Version(l List) (string, bool) { return l.Get(NameVersion) }

// Session returns the session header, if present.
func Session(l List) (string, bool) { return l.Get(NameSession) }

// Server returns the server header, if present.
func Server(l List) (string, bool) { return l.Get(NameServer) }

// MessageID returns the message-id header, if present.
func MessageID(l List) (string, bool) { return l.Get(NameMessageID) }

// Transaction returns the transaction header, if present.
func Transaction(l List) (string, bool) { return l.Get(NameTransaction) }

// ContentLength returns the parsed content-length header. A present but
// malformed value is reported as an error so the caller (the codec) can
// decide to fall back to NUL-terminated scanning rather than fail decoding
// outright.
func ContentLength(l List) (n int, present bool, err error) {
	raw, ok := l.Get(NameContentLength)
	if !ok {
		return 0, false, nil
	}
	v, convErr := strconv.Atoi(raw)
	if convErr != nil || v < 0 {
		return 0, true, fmt.Errorf("header: malformed content-length %q: %w", raw, convErr)
	}
	return v, true, nil
}

// HeartBeat is the parsed form of the heart-beat header: the sender's desired
// send interval and the sender's tolerable receive interval, both in
// milliseconds.
type HeartBeat struct {
	Cx uint64 // desired outgoing interval
	Cy uint64 // tolerable incoming interval
}

// String renders the header value as "cx,cy".
func (h HeartBeat) String() string {
	return strconv.FormatUint(h.Cx, 10) + "," + strconv.FormatUint(h.Cy, 10)
}

// ParseHeartBeat parses a "cx,cy" value, rejecting anything that isn't
// exactly two comma-separated non-negative decimal integers.
func ParseHeartBeat(raw string) (HeartBeat, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return HeartBeat{}, fmt.Errorf("header: malformed heart-beat %q: want \"cx,cy\"", raw)
	}
	cx, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return HeartBeat{}, fmt.Errorf("header: malformed heart-beat cx in %q: %w", raw, err)
	}
	cy, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return HeartBeat{}, fmt.Errorf("header: malformed heart-beat cy in %q: %w", raw, err)
	}
	return HeartBeat{Cx: cx, Cy: cy}, nil
}

// HeartBeatOf returns the parsed heart-beat header, if present.
func HeartBeatOf(l List) (HeartBeat, bool, error) {
	raw, ok := l.Get(NameHeartBeat)
	if !ok {
		return HeartBeat{}, false, nil
	}
	hb, err := ParseHeartBeat(raw)
	if err != nil {
		return HeartBeat{}, true, err
	}
	return hb, true, nil
}
