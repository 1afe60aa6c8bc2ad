package session

import (
	"bytes"
	"net"
	"testing"
	"time"

	"stomp/codec"
	"stomp/connection"
	"stomp/frame"
)

func newTestSession(t *testing.T) (*Session, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	c := &connection.Connection{Conn: client}
	return newSession(c, DefaultGracePeriod), server
}

func readFrame(t *testing.T, conn net.Conn) *frame.Frame {
	t.Helper()
	var buf bytes.Buffer
	chunk := make([]byte, 4096)
	for {
		tr, ok, err := codec.Decode(&buf)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if ok {
			if tr.Heartbeat {
				continue
			}
			return tr.Frame
		}
		n, rerr := conn.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if rerr != nil {
			t.Fatalf("read: %v", rerr)
		}
	}
}

func writeFrame(t *testing.T, conn net.Conn, f *frame.Frame) {
	t.Helper()
	if err := codec.Encode(conn, f); err != nil {
		t.Errorf("encode: %v", err)
	}
}

func TestSubscribeSendsFrameAndAcksMessage(t *testing.T) {
	s, server := newTestSession(t)

	received := make(chan struct{})
	id, err := s.Subscription("/queue/a", func(f *frame.Frame) AckDecision {
		close(received)
		return Ack
	}).WithAckMode(frame.AckClient).Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	sub := readFrame(t, server)
	if sub.Command != frame.CmdSubscribe {
		t.Fatalf("command = %v, want SUBSCRIBE", sub.Command)
	}
	if dest, _ := sub.Header("destination"); dest != "/queue/a" {
		t.Errorf("destination = %q, want /queue/a", dest)
	}
	if subID, _ := sub.Header("id"); subID != id {
		t.Errorf("id header = %q, want %q", subID, id)
	}

	go writeFrame(t, server, frame.New(frame.CmdMessage).
		AddHeader("subscription", id).
		AddHeader("message-id", "m-1").
		AddHeader("ack", "a-1"))

	listenErr := make(chan error, 1)
	go func() { listenErr <- s.Listen() }()

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}

	ack := readFrame(t, server)
	if ack.Command != frame.CmdAck {
		t.Fatalf("command = %v, want ACK", ack.Command)
	}
	if ackID, _ := ack.Header("id"); ackID != "a-1" {
		t.Errorf("ack id = %q, want a-1", ackID)
	}

	server.Close()
	<-listenErr
}

func TestAutoAckModeSendsNoAck(t *testing.T) {
	s, server := newTestSession(t)

	received := make(chan struct{})
	id, err := s.Subscription("/queue/a", func(f *frame.Frame) AckDecision {
		close(received)
		return Ack
	}).Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	readFrame(t, server) // consume SUBSCRIBE

	go writeFrame(t, server, frame.New(frame.CmdMessage).AddHeader("subscription", id))

	listenErr := make(chan error, 1)
	go func() { listenErr <- s.Listen() }()

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}

	// Give the writer a moment to (incorrectly) emit an ACK if it were going to.
	done := make(chan *frame.Frame, 1)
	go func() { done <- readFrame(t, server) }()
	select {
	case f := <-done:
		t.Fatalf("unexpected frame sent in Auto ack mode: %v", f.Command)
	case <-time.After(100 * time.Millisecond):
	}

	server.Close()
	<-listenErr
}

func TestUnsubscribeUnknownIDIsUsageError(t *testing.T) {
	s, _ := newTestSession(t)
	if err := s.Unsubscribe("nope"); err == nil {
		t.Fatal("Unsubscribe succeeded for an unknown id")
	}
}

func TestSendWithReceiptFiresHandlerOnce(t *testing.T) {
	s, server := newTestSession(t)

	fired := make(chan *frame.Frame, 1)
	receiptID, err := s.Message("/queue/a", []byte("hi")).
		WithReceipt(func(f *frame.Frame) { fired <- f }).
		Send()
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	sendFrame := readFrame(t, server)
	if sendFrame.Command != frame.CmdSend {
		t.Fatalf("command = %v, want SEND", sendFrame.Command)
	}
	if rid, _ := sendFrame.Header("receipt"); rid != receiptID {
		t.Errorf("receipt header = %q, want %q", rid, receiptID)
	}

	go writeFrame(t, server, frame.New(frame.CmdReceipt).AddHeader("receipt-id", receiptID))

	listenErr := make(chan error, 1)
	go func() { listenErr <- s.Listen() }()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("receipt handler was not invoked")
	}

	if snap := s.Stats(); snap.PendingReceipts != 0 {
		t.Errorf("PendingReceipts = %d, want 0 after firing", snap.PendingReceipts)
	}

	server.Close()
	<-listenErr
}

func TestMessageForUnknownSubscriptionIsProtocolError(t *testing.T) {
	s, server := newTestSession(t)

	go writeFrame(t, server, frame.New(frame.CmdMessage).AddHeader("subscription", "nope"))

	err := s.Listen()
	if err == nil {
		t.Fatal("Listen succeeded, want a protocol error")
	}
}

func TestErrorFrameInvokesHandlerWithoutTerminatingListen(t *testing.T) {
	s, server := newTestSession(t)

	gotErr := make(chan *frame.Frame, 1)
	s.OnError(func(f *frame.Frame) { gotErr <- f })

	go writeFrame(t, server, frame.New(frame.CmdError).AddHeader("message", "broker is unhappy"))

	listenErr := make(chan error, 1)
	go func() { listenErr <- s.Listen() }()

	select {
	case f := <-gotErr:
		if msg, _ := f.Header("message"); msg != "broker is unhappy" {
			t.Errorf("message = %q, want %q", msg, "broker is unhappy")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error handler was not invoked")
	}

	select {
	case err := <-listenErr:
		t.Fatalf("Listen returned %v after an ERROR frame, want it still running", err)
	case <-time.After(100 * time.Millisecond):
	}

	server.Close()
	<-listenErr
}

func TestSendAfterSessionClosedReturnsErrorInsteadOfBlocking(t *testing.T) {
	s, server := newTestSession(t)

	// Force the session closed without going through Listen/Disconnect, the
	// same way a fatal reader error would.
	server.Close()

	done := make(chan struct{})
	go func() {
		for {
			if _, err := s.Message("/queue/a", []byte("hi")).Send(); err != nil {
				break
			}
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send never observed the closed session")
	}
}

func TestEnqueueReturnsAfterConnectionClosesWithNoHeartbeat(t *testing.T) {
	s, server := newTestSession(t)
	if s.txInterval != 0 {
		t.Fatalf("txInterval = %v, want 0 (disabled) for this test's default connection", s.txInterval)
	}

	server.Close()

	done := make(chan struct{})
	go func() {
		// With heartbeats disabled and the connection gone, enqueue must
		// still return (queueing the frame or reporting the closed
		// session) rather than block the caller.
		s.enqueue(frame.Disconnect())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("enqueue after connection close did not return")
	}
}

func TestDisconnectWithReceiptWaitsThenCloses(t *testing.T) {
	s, server := newTestSession(t)

	fired := make(chan struct{})
	disconnectErr := make(chan error, 1)
	go func() {
		disconnectErr <- s.Disconnect(func(*frame.Frame) { close(fired) })
	}()

	discFrame := readFrame(t, server)
	if discFrame.Command != frame.CmdDisconnect {
		t.Fatalf("command = %v, want DISCONNECT", discFrame.Command)
	}
	receiptID, ok := discFrame.Header("receipt")
	if !ok {
		t.Fatal("DISCONNECT frame missing receipt header")
	}

	listenErr := make(chan error, 1)
	go func() { listenErr <- s.Listen() }()

	go writeFrame(t, server, frame.New(frame.CmdReceipt).AddHeader("receipt-id", receiptID))

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("receipt handler was not invoked")
	}
	if err := <-disconnectErr; err != nil {
		t.Fatalf("Disconnect: %v", err)
	}

	server.Close()
	<-listenErr
}

func TestTransactionCommitRejectsSecondResolution(t *testing.T) {
	s, server := newTestSession(t)

	tx, err := s.BeginTransaction()
	if err != nil {
		t.Fatalf("BeginTransaction: %v", err)
	}
	begin := readFrame(t, server)
	if begin.Command != frame.CmdBegin {
		t.Fatalf("command = %v, want BEGIN", begin.Command)
	}
	if txID, _ := begin.Header("transaction"); txID != tx.ID() {
		t.Errorf("transaction header = %q, want %q", txID, tx.ID())
	}

	commitDone := make(chan struct{})
	go func() {
		if err := tx.Commit(); err != nil {
			t.Errorf("first Commit: %v", err)
		}
		close(commitDone)
	}()
	readFrame(t, server)
	<-commitDone

	if err := tx.Commit(); err == nil {
		t.Fatal("second Commit succeeded, want usage error")
	}
	if err := tx.Abort(); err == nil {
		t.Fatal("Abort after Commit succeeded, want usage error")
	}
}
