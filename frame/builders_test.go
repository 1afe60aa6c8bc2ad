package frame

import (
	"testing"

	"stomp/header"
)

func TestConnectBuildsCanonicalHeaders(t *testing.T) {
	hb := header.HeartBeat{Cx: 10000, Cy: 5000}
	f := Connect("1.2", "myhost", hb, "guest", "secret")
	if f.Command != CmdConnect {
		t.Fatalf("Command = %v, want CONNECT", f.Command)
	}
	cases := map[string]string{
		header.NameAcceptVersion: "1.2",
		header.NameHost:          "myhost",
		header.NameHeartBeat:     "10000,5000",
		header.NameLogin:         "guest",
		header.NamePasscode:      "secret",
	}
	for name, want := range cases {
		if got, ok := f.Header(name); !ok || got != want {
			t.Errorf("Header(%s) = (%q, %v), want (%q, true)", name, got, ok, want)
		}
	}
}

func TestConnectOmitsCredentialsWhenEmpty(t *testing.T) {
	f := Connect("1.2", "myhost", header.HeartBeat{}, "", "")
	if _, ok := f.Header(header.NameLogin); ok {
		t.Errorf("login header present with empty credentials")
	}
	if _, ok := f.Header(header.NamePasscode); ok {
		t.Errorf("passcode header present with empty credentials")
	}
}

func TestSendSetsContentLength(t *testing.T) {
	f := Send("/queue/a", []byte("hello"))
	if cl, ok := f.Header(header.NameContentLength); !ok || cl != "5" {
		t.Errorf("content-length = (%q, %v), want (5, true)", cl, ok)
	}
	if dest, _ := f.Header(header.NameDestination); dest != "/queue/a" {
		t.Errorf("destination = %q, want /queue/a", dest)
	}
}

func TestSendOptionsApplyInOrder(t *testing.T) {
	f := Send("/queue/a", []byte("hi"),
		WithContentType("text/plain"),
		WithCustomHeader("x-trace", "abc"),
		WithReceipt("r-1"),
	)
	if ct, _ := f.Header(header.NameContentType); ct != "text/plain" {
		t.Errorf("content-type = %q, want text/plain", ct)
	}
	if v, _ := f.Header("x-trace"); v != "abc" {
		t.Errorf("x-trace = %q, want abc", v)
	}
	if r, _ := f.Header(header.NameReceipt); r != "r-1" {
		t.Errorf("receipt = %q, want r-1", r)
	}
}

func TestWithSuppressedHeaderRemovesDefault(t *testing.T) {
	f := Send("/queue/a", []byte("hi"), WithSuppressedHeader(header.NameContentLength))
	if _, ok := f.Header(header.NameContentLength); ok {
		t.Errorf("content-length still present after suppression")
	}
}

func TestSubscribeBuildsCanonicalHeaders(t *testing.T) {
	f := Subscribe("sub-0", "/queue/a", AckClient)
	if f.Command != CmdSubscribe {
		t.Fatalf("Command = %v, want SUBSCRIBE", f.Command)
	}
	cases := map[string]string{
		header.NameID:          "sub-0",
		header.NameDestination: "/queue/a",
		header.NameAck:         "client",
	}
	for name, want := range cases {
		if got, ok := f.Header(name); !ok || got != want {
			t.Errorf("Header(%s) = (%q, %v), want (%q, true)", name, got, ok, want)
		}
	}
}

func TestUnsubscribeAckNackCarryID(t *testing.T) {
	if id, _ := Unsubscribe("sub-1").Header(header.NameID); id != "sub-1" {
		t.Errorf("Unsubscribe id = %q, want sub-1", id)
	}
	if id, _ := Ack("m-1").Header(header.NameID); id != "m-1" {
		t.Errorf("Ack id = %q, want m-1", id)
	}
	if id, _ := Nack("m-1").Header(header.NameID); id != "m-1" {
		t.Errorf("Nack id = %q, want m-1", id)
	}
}

func TestTransactionFramesCarryID(t *testing.T) {
	for _, tc := range []struct {
		build func(string) *Frame
		want  Command
	}{
		{Begin, CmdBegin},
		{Commit, CmdCommit},
		{Abort, CmdAbort},
	} {
		f := tc.build("tx-1")
		if f.Command != tc.want {
			t.Errorf("Command = %v, want %v", f.Command, tc.want)
		}
		if txID, _ := f.Header(header.NameTransaction); txID != "tx-1" {
			t.Errorf("transaction = %q, want tx-1", txID)
		}
	}
}

func TestDisconnectHasNoHeaders(t *testing.T) {
	f := Disconnect()
	if f.Command != CmdDisconnect {
		t.Fatalf("Command = %v, want DISCONNECT", f.Command)
	}
	if len(f.Headers) != 0 {
		t.Errorf("Disconnect() has headers: %+v", f.Headers)
	}
}
