package irc

import (
	"testing"
	"time"
)

func TestIsFatalRegistration(t *testing.T) {
	cases := map[string]bool{
		"433": false,
		"439": false,
		"004": false,
		"464": true,
		"501": true,
		"001": false,
		"AB": false,
	}
	for code, want := range cases {
		if got := isFatalRegistration(code); got != want {
			t.Errorf("isFatalRegistration(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestConnectionSetSendDelayRejectsNegative(t *testing.T) {
	identity := NewIdentity("bot", "bot", "Bot")
	conn := NewConnection(identity, nil)

	if err := conn.SetSendDelay(500 * time.Millisecond); err != nil {
		t.Fatalf("SetSendDelay(500ms) error = %v", err)
	}
	if conn.SendDelay != 500*time.Millisecond {
		t.Errorf("SendDelay = %v, want 500ms", conn.SendDelay)
	}

	if err := conn.SetSendDelay(-1 * time.Second); err == nil {
		t.Error("expected error setting a negative send delay")
	}
}

func TestNewConnectionRegistersDefaultHandler(t *testing.T) {
	identity := NewIdentity("bot", "bot", "Bot")
	conn := NewConnection(identity, nil)

	if conn.Handlers() == nil {
		t.Fatal("expected a non-nil handler registry")
	}

	// replyCTCP needs a live queue; give the never-connected Connection one
	// so the default handler's reply can be observed.
	conn.queue = NewOutboundQueue(nil)
	conn.handlers.Dispatch(conn, CTCPRequestEvent{Verb: "FINGER", Sender: "alice"})
	if line, ok := conn.queue.dequeue(); !ok || line != "NOTICE alice \x01FINGER\x01" {
		t.Errorf("default handler reply = (%q, %v), want (%q, true)", line, ok, "NOTICE alice \x01FINGER\x01")
	}
}

func TestIdentityDefaultsAndSetters(t *testing.T) {
	id := NewIdentity("bot", "botuser", "Bot Realname")
	if id.Name() != "bot" || id.CurrentNick() != "bot" {
		t.Errorf("Name/CurrentNick = %q/%q, want bot/bot", id.Name(), id.CurrentNick())
	}
	id.SetVersion("v1.2.3")
	id.SetFinger("finger info")
	id.SetVerbose(true)
	if id.Version() != "v1.2.3" || id.Finger() != "finger info" || !id.Verbose() {
		t.Errorf("setters did not apply: version=%q finger=%q verbose=%v", id.Version(), id.Finger(), id.Verbose())
	}
}

func TestReconnectFailsWithoutPriorConnect(t *testing.T) {
	identity := NewIdentity("bot", "bot", "Bot")
	conn := NewConnection(identity, nil)

	if err := conn.Reconnect(); err == nil {
		t.Error("expected Reconnect to fail before any successful Connect")
	}
}

func TestDisconnectFailsWhenNotConnected(t *testing.T) {
	identity := NewIdentity("bot", "bot", "Bot")
	conn := NewConnection(identity, nil)

	if err := conn.Disconnect("bye"); err == nil {
		t.Error("expected Disconnect to fail when never connected")
	}
}
