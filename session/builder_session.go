package session

import (
	"fmt"
	"net"
	"time"

	"stomp/connection"
	"stomp/header"
)

// Builder accumulates connection options before Start performs the CONNECT
// handshake, mirroring the original implementation's
// `stomp::session(host, port).start()` entry point.
type Builder struct {
	host        string
	port        int
	heartbeat   header.HeartBeat
	creds       connection.Credentials
	extra       []header.Header
	connectHost string
	dialTimeout time.Duration
	gracePeriod float64
}

// New starts building a session to (host, port). By default no heartbeat
// is proposed and no credentials are sent.
func New(host string, port int) *Builder {
	return &Builder{
		host:        host,
		port:        port,
		connectHost: host,
		dialTimeout: 10 * time.Second,
		gracePeriod: DefaultGracePeriod,
	}
}

// WithCredentials sets the STOMP login/passcode sent on CONNECT.
func (b *Builder) WithCredentials(login, passcode string) *Builder {
	b.creds = connection.Credentials{Login: login, Passcode: passcode}
	return b
}

// WithHeartbeat proposes cx (this client's send interval) and cy (this
// client's tolerable receive interval), both in milliseconds.
func (b *Builder) WithHeartbeat(cx, cy uint64) *Builder {
	b.heartbeat = header.HeartBeat{Cx: cx, Cy: cy}
	return b
}

// WithHeader appends an arbitrary raw header to the CONNECT frame.
func (b *Builder) WithHeader(name, value string) *Builder {
	b.extra = append(b.extra, header.New(name, value))
	return b
}

// WithHost overrides the `host` header sent on CONNECT (useful behind a
// virtual-hosting broker where it differs from the TCP target).
func (b *Builder) WithHost(host string) *Builder {
	b.connectHost = host
	return b
}

// WithDialTimeout bounds the TCP connect and the CONNECT/CONNECTED round
// trip. The default is 10 seconds.
func (b *Builder) WithDialTimeout(d time.Duration) *Builder {
	b.dialTimeout = d
	return b
}

// WithGracePeriod overrides the multiplier applied to the negotiated
// receive heartbeat interval; the default matches the original
// implementation's fixed 2.0.
func (b *Builder) WithGracePeriod(multiplier float64) *Builder {
	b.gracePeriod = multiplier
	return b
}

// Start dials the broker, performs the handshake, and returns a running
// Session with its reader and writer goroutines already active.
func (b *Builder) Start() (*Session, error) {
	addr := net.JoinHostPort(b.host, fmt.Sprintf("%d", b.port))
	c, err := connection.Dial(addr, b.connectHost, b.heartbeat, b.creds, b.extra, b.dialTimeout)
	if err != nil {
		return nil, err
	}
	return newSession(c, b.gracePeriod), nil
}
