// Package frame defines the STOMP frame model — a command, an ordered header
// list, and an opaque body — plus the tagged Transmission choice the codec
// decodes into (a heartbeat or a complete frame).
package frame

import "stomp/header"

// Command identifies a frame's verb. The zero value is never a valid command.
type Command string

// Client-originated commands.
const (
	CmdConnect     Command = "CONNECT"
	CmdSend        Command = "SEND"
	CmdSubscribe   Command = "SUBSCRIBE"
	CmdUnsubscribe Command = "UNSUBSCRIBE"
	CmdAck         Command = "ACK"
	CmdNack        Command = "NACK"
	CmdBegin       Command = "BEGIN"
	CmdCommit      Command = "COMMIT"
	CmdAbort       Command = "ABORT"
	CmdDisconnect  Command = "DISCONNECT"
)

// Server-originated commands.
const (
	CmdConnected Command = "CONNECTED"
	CmdMessage   Command = "MESSAGE"
	CmdReceipt   Command = "RECEIPT"
	CmdError     Command = "ERROR"
)

// serverCommands is the set of commands a server may legitimately send. The
// codec itself accepts the full STOMP vocabulary when decoding — it has no
// notion of direction — so it is the session dispatcher that uses this set
// to reject an inbound frame whose command is a client-only one.
var serverCommands = map[Command]bool{
	CmdConnected: true,
	CmdMessage:   true,
	CmdReceipt:   true,
	CmdError:     true,
}

// IsServerCommand reports whether cmd is one of the server-originated set.
func IsServerCommand(cmd Command) bool {
	return serverCommands[cmd]
}

// Frame is a single STOMP frame: a command, its headers, and an opaque body.
type Frame struct {
	Command Command
	Headers header.List
	Body    []byte
}

// New builds a bare frame with no headers and no body.
func New(cmd Command) *Frame {
	return &Frame{Command: cmd}
}

// AddHeader appends a raw header, preserving duplicates and insertion order.
func (f *Frame) AddHeader(name, value string) *Frame {
	f.Headers = f.Headers.Add(name, value)
	return f
}

// Header returns the first value for name, if present.
func (f *Frame) Header(name string) (string, bool) {
	return f.Headers.Get(name)
}
