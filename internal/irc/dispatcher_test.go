package irc

import "testing"

type recordingHandler struct {
	caps   Capability
	events []Event
}

func (h *recordingHandler) Capabilities() Capability { return h.caps }
func (h *recordingHandler) HandleEvent(conn *Connection, event Event) {
	h.events = append(h.events, event)
}

func newTestDispatcher(rec *recordingHandler) *dispatcher {
	registry := NewChannelRegistry("bot")
	handlers := NewHandlerRegistry()
	handlers.Register(rec)
	dcc := NewDCCManager(func(string) {})
	return newDispatcher(&Connection{}, registry, handlers, dcc, DefaultChannelPrefixes)
}

func TestDispatchPingGoesStraightToServerPingEvent(t *testing.T) {
	rec := &recordingHandler{caps: Full}
	d := newTestDispatcher(rec)

	d.Dispatch("PING :abc123")

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(rec.events))
	}
	ping, ok := rec.events[0].(ServerPingEvent)
	if !ok || ping.Token != ":abc123" {
		t.Errorf("event = %#v, want ServerPingEvent{Token: \":abc123\"}", rec.events[0])
	}
}

func TestDispatchUnparsableLineEmitsUnknownEvent(t *testing.T) {
	rec := &recordingHandler{caps: Full}
	d := newTestDispatcher(rec)

	d.Dispatch(":nocommand")

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(rec.events))
	}
	if _, ok := rec.events[0].(UnknownEvent); !ok {
		t.Errorf("event = %#v, want UnknownEvent", rec.events[0])
	}
}

func TestDispatchUnrecognizedCommandFallsBackToUnknownEvent(t *testing.T) {
	rec := &recordingHandler{caps: Full}
	d := newTestDispatcher(rec)

	d.Dispatch(":server.example WALLOPS :some message")

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(rec.events))
	}
	if _, ok := rec.events[0].(UnknownEvent); !ok {
		t.Errorf("event = %#v, want UnknownEvent", rec.events[0])
	}
}

func TestDispatchPrivmsgRoutesChannelVsPrivate(t *testing.T) {
	rec := &recordingHandler{caps: Full}
	d := newTestDispatcher(rec)

	d.Dispatch(":alice!a@h PRIVMSG #chan :hello all")
	d.Dispatch(":alice!a@h PRIVMSG bot :just us")

	if len(rec.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(rec.events))
	}
	if _, ok := rec.events[0].(MessageEvent); !ok {
		t.Errorf("event[0] = %#v, want MessageEvent", rec.events[0])
	}
	if _, ok := rec.events[1].(PrivateMessageEvent); !ok {
		t.Errorf("event[1] = %#v, want PrivateMessageEvent", rec.events[1])
	}
}

func TestDispatchCTCPActionEmitsActionEvent(t *testing.T) {
	rec := &recordingHandler{caps: Full}
	d := newTestDispatcher(rec)

	d.Dispatch(":alice!a@h PRIVMSG #chan :\x01ACTION waves\x01")

	action, ok := rec.events[0].(ActionEvent)
	if !ok || action.Text != "waves" || action.Channel != "#chan" {
		t.Errorf("event = %#v, want ActionEvent{Channel: #chan, Text: waves}", rec.events[0])
	}
}

func TestDispatchCTCPVersionEmitsCTCPRequestEvent(t *testing.T) {
	rec := &recordingHandler{caps: Full}
	d := newTestDispatcher(rec)

	d.Dispatch(":alice!a@h PRIVMSG bot :\x01VERSION\x01")

	req, ok := rec.events[0].(CTCPRequestEvent)
	if !ok || req.Verb != "VERSION" || req.Sender != "alice" {
		t.Errorf("event = %#v, want CTCPRequestEvent{Verb: VERSION, Sender: alice}", rec.events[0])
	}
}

func TestDispatchCTCPDCCRoutesThroughManager(t *testing.T) {
	rec := &recordingHandler{caps: Full}
	d := newTestDispatcher(rec)

	d.Dispatch(":alice!a@h PRIVMSG bot :\x01DCC SEND report.pdf 3232235521 5000 100\x01")

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(rec.events))
	}
	if _, ok := rec.events[0].(IncomingFileTransferEvent); !ok {
		t.Errorf("event = %#v, want IncomingFileTransferEvent", rec.events[0])
	}
}

func TestDispatchJoinUpdatesRegistryAndEmits(t *testing.T) {
	rec := &recordingHandler{caps: Full}
	d := newTestDispatcher(rec)
	d.registry.OnJoin("#chan", "bot")

	d.Dispatch(":alice!a@h JOIN #chan")

	users := userMap(d.registry.Users("#chan"))
	if _, present := users["alice"]; !present {
		t.Error("expected alice registered in #chan after JOIN")
	}
	if _, ok := rec.events[0].(JoinEvent); !ok {
		t.Errorf("event = %#v, want JoinEvent", rec.events[0])
	}
}

func TestDispatchModeChannelVsUser(t *testing.T) {
	rec := &recordingHandler{caps: Full}
	d := newTestDispatcher(rec)
	d.registry.OnJoin("#chan", "bob")

	d.Dispatch(":op!o@h MODE #chan +o bob")
	d.Dispatch(":server MODE bot +i")

	foundModeEvent, foundUserMode := false, false
	for _, e := range rec.events {
		switch e.(type) {
		case ModeEvent:
			foundModeEvent = true
		case UserModeEvent:
			foundUserMode = true
		}
	}
	if !foundModeEvent {
		t.Error("expected a ModeEvent for the channel MODE")
	}
	if !foundUserMode {
		t.Error("expected a UserModeEvent for the user MODE")
	}
}

func TestNumericResponseStitchesTopic332And333(t *testing.T) {
	rec := &recordingHandler{caps: Full}
	d := newTestDispatcher(rec)

	d.Dispatch(":irc.example.com 332 bot #chan :welcome to the channel")
	d.Dispatch(":irc.example.com 333 bot #chan alice 1000000")

	var topic *TopicEvent
	for i := range rec.events {
		if te, ok := rec.events[i].(TopicEvent); ok {
			topic = &te
		}
	}
	if topic == nil {
		t.Fatal("expected a TopicEvent after the 332/333 pair")
	}
	if topic.Topic != "welcome to the channel" || topic.SetBy != "alice" || topic.EpochMS != 1000000000 {
		t.Errorf("topic = %+v, want Topic/SetBy/EpochMS stitched from both numerics", *topic)
	}
}

func TestNumericResponseUsesRawIndexQuirk(t *testing.T) {
	// numericResponse locates the code by its byte offset in the raw
	// line rather than the tokenized params, so it returns everything
	// starting at the target nick — including that token — not just
	// the trailing text.
	raw := ":irc.example.com 004 bot :welcome message here"
	msg, ok := ParseLine(raw)
	if !ok {
		t.Fatal("ParseLine failed")
	}
	got := numericResponse(raw, msg, "004")
	if got != "bot :welcome message here" {
		t.Errorf("numericResponse() = %q, want %q", got, "bot :welcome message here")
	}
}

func TestDispatchNumericAlwaysEmitsServerResponseEvent(t *testing.T) {
	rec := &recordingHandler{caps: Full}
	d := newTestDispatcher(rec)

	d.Dispatch(":irc.example.com 001 bot :welcome")

	found := false
	for _, e := range rec.events {
		if sr, ok := e.(ServerResponseEvent); ok && sr.Code == "001" {
			found = true
		}
	}
	if !found {
		t.Error("expected a ServerResponseEvent with code 001")
	}
}

func TestHandleNamesAndEndOfNamesProducesUserListEvent(t *testing.T) {
	rec := &recordingHandler{caps: Full}
	d := newTestDispatcher(rec)

	d.Dispatch(":irc.example.com 353 bot = #chan :@op1 +voice1 plain1")
	d.Dispatch(":irc.example.com 366 bot #chan :End of /NAMES list.")

	var list *UserListEvent
	for i := range rec.events {
		if ule, ok := rec.events[i].(UserListEvent); ok {
			list = &ule
		}
	}
	if list == nil {
		t.Fatal("expected a UserListEvent after 353/366")
	}
	if len(list.Users) != 3 {
		t.Fatalf("UserListEvent.Users = %v, want 3 entries", list.Users)
	}
}

func TestDispatchHonorsConfiguredChannelPrefixes(t *testing.T) {
	rec := &recordingHandler{caps: Full}
	registry := NewChannelRegistry("bot")
	handlers := NewHandlerRegistry()
	handlers.Register(rec)
	dcc := NewDCCManager(func(string) {})
	// A network using "." as its only channel sigil instead of the
	// RFC 2812 default: a target that the default prefix set would
	// treat as a private message must now route as a channel message,
	// proving the dispatcher reads Connection.ChannelPrefixes rather
	// than always falling back to DefaultChannelPrefixes.
	d := newDispatcher(&Connection{}, registry, handlers, dcc, ".")

	d.Dispatch(":alice!a@h PRIVMSG .weird :hello")
	d.Dispatch(":alice!a@h PRIVMSG #normal :also hello")

	if len(rec.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(rec.events))
	}
	if _, ok := rec.events[0].(MessageEvent); !ok {
		t.Errorf("event[0] = %#v, want MessageEvent for .weird under custom prefixes", rec.events[0])
	}
	if _, ok := rec.events[1].(PrivateMessageEvent); !ok {
		t.Errorf("event[1] = %#v, want PrivateMessageEvent for #normal under custom prefixes", rec.events[1])
	}
}
