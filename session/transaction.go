package session

import (
	"fmt"
	"sync/atomic"

	"stomp/frame"
)

// txState tracks whether a Transaction has already been resolved, since
// committing or aborting twice is a usage error rather than a silent
// no-op.
type txState int32

const (
	txOpen txState = iota
	txCommitted
	txAborted
)

// Transaction is a handle returned by BeginTransaction; Commit and Abort
// are mutually exclusive and each may be called at most once.
type Transaction struct {
	session *Session
	id      string
	state   atomic.Int32
}

// BeginTransaction allocates a transaction id and sends BEGIN.
func (s *Session) BeginTransaction() (*Transaction, error) {
	id := s.nextTransactionID.next()
	if err := s.send(frame.Begin(id)); err != nil {
		return nil, err
	}
	return &Transaction{session: s, id: id}, nil
}

// ID returns the transaction's session-unique identifier.
func (t *Transaction) ID() string { return t.id }

// Commit sends COMMIT. Committing an already-resolved transaction is a
// usage error returned without touching the wire.
func (t *Transaction) Commit() error {
	if !t.state.CompareAndSwap(int32(txOpen), int32(txCommitted)) {
		return fmt.Errorf("stomp/session: transaction %q already resolved", t.id)
	}
	return t.session.send(frame.Commit(t.id))
}

// Abort sends ABORT. Aborting an already-resolved transaction is a usage
// error returned without touching the wire.
func (t *Transaction) Abort() error {
	if !t.state.CompareAndSwap(int32(txOpen), int32(txAborted)) {
		return fmt.Errorf("stomp/session: transaction %q already resolved", t.id)
	}
	return t.session.send(frame.Abort(t.id))
}
