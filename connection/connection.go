// Package connection dials the broker and performs the CONNECT/CONNECTED
// handshake, negotiating the effective heartbeat intervals the session and
// I/O fabric run on afterward.
package connection

import (
	"bytes"
	"fmt"
	"net"
	"time"

	"stomp/codec"
	"stomp/frame"
	"stomp/header"
)

// AcceptVersion is the only protocol version this client offers.
const AcceptVersion = "1.2"

// Connection is an established, handshaked link to a broker: the raw socket
// plus the negotiated heartbeat intervals the I/O fabric arms its timers
// with. tx/rx are zero when that direction's heartbeat is disabled.
type Connection struct {
	Conn    net.Conn
	Server  string
	Session string
	Version string

	// TxInterval is how often the writer must emit something (a frame or a
	// bare heartbeat) to satisfy the broker's receive expectation.
	TxInterval time.Duration
	// RxInterval is how often the broker has promised to emit something;
	// the reader's heartbeat-miss timer is driven off this.
	RxInterval time.Duration
}

// Credentials holds the optional STOMP login.
type Credentials struct {
	Login    string
	Passcode string
}

// Dial opens a TCP connection to addr (host:port), sends CONNECT with the
// given heartbeat proposal, credentials, and extra headers, and waits for
// CONNECTED. The dial timeout bounds both the TCP connect and the handshake
// round trip.
func Dial(addr string, host string, proposed header.HeartBeat, creds Credentials, extra []header.Header, dialTimeout time.Duration) (*Connection, error) {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("stomp/connection: dial %s: %w", addr, err)
	}
	c, err := handshake(conn, host, proposed, creds, extra, dialTimeout)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func handshake(conn net.Conn, host string, proposed header.HeartBeat, creds Credentials, extra []header.Header, timeout time.Duration) (*Connection, error) {
	if timeout > 0 {
		conn.SetDeadline(time.Now().Add(timeout))
		defer conn.SetDeadline(time.Time{})
	}

	connectFrame := frame.Connect(AcceptVersion, host, proposed, creds.Login, creds.Passcode, extra...)
	if err := codec.Encode(conn, connectFrame); err != nil {
		return nil, fmt.Errorf("stomp/connection: sending CONNECT: %w", err)
	}

	t, err := readOneTransmission(conn)
	if err != nil {
		return nil, fmt.Errorf("stomp/connection: awaiting CONNECTED: %w", err)
	}
	if t.Heartbeat {
		return nil, fmt.Errorf("stomp/connection: expected CONNECTED, got a heartbeat")
	}
	if t.Frame.Command != frame.CmdConnected {
		detail, _ := t.Frame.Header(header.NameMessage)
		return nil, fmt.Errorf("stomp/connection: expected CONNECTED, got %s (%s)", t.Frame.Command, detail)
	}

	version, _ := t.Frame.Header(header.NameVersion)
	session, _ := t.Frame.Header(header.NameSession)
	server, _ := t.Frame.Header(header.NameServer)

	negotiated, present, err := header.HeartBeatOf(t.Frame.Headers)
	if err != nil {
		return nil, fmt.Errorf("stomp/connection: malformed heart-beat header: %w", err)
	}
	if !present {
		negotiated = header.HeartBeat{}
	}

	tx := negotiateInterval(proposed.Cx, negotiated.Cy)
	rx := negotiateInterval(proposed.Cy, negotiated.Cx)

	return &Connection{
		Conn:       conn,
		Server:     server,
		Session:    session,
		Version:    version,
		TxInterval: time.Duration(tx) * time.Millisecond,
		RxInterval: time.Duration(rx) * time.Millisecond,
	}, nil
}

// negotiateInterval applies the STOMP 1.2 heartbeat formula: the effective
// interval is the max of the two proposed values, unless either side
// proposed zero, in which case that direction is disabled entirely.
func negotiateInterval(mine, theirs uint64) uint64 {
	if mine == 0 || theirs == 0 {
		return 0
	}
	if mine > theirs {
		return mine
	}
	return theirs
}

// readOneTransmission blocks until a full transmission is available,
// growing buf as needed. It is only used during the handshake; once a
// session is running, the reader loop in the I/O fabric takes over.
func readOneTransmission(conn net.Conn) (frame.Transmission, error) {
	var buf bytes.Buffer
	chunk := make([]byte, 4096)
	for {
		t, ok, err := codec.Decode(&buf)
		if err != nil {
			return frame.Transmission{}, err
		}
		if ok {
			return t, nil
		}
		n, err := conn.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			continue
		}
		if err != nil {
			return frame.Transmission{}, err
		}
	}
}
