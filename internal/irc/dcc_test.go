package irc

import (
	"strings"
	"testing"
)

func TestProcessRequestSendProducesIncomingFileTransferEvent(t *testing.T) {
	m := NewDCCManager(func(string) {})
	event := m.ProcessRequest("alice", "a", "host", "DCC SEND report.pdf 3232235521 5000 102400")

	ev, ok := event.(IncomingFileTransferEvent)
	if !ok {
		t.Fatalf("ProcessRequest() = %#v, want IncomingFileTransferEvent", event)
	}
	if ev.Transfer.Filename != "report.pdf" || ev.Transfer.Port != 5000 || ev.Transfer.Size != 102400 {
		t.Errorf("transfer = %+v, want filename=report.pdf port=5000 size=102400", ev.Transfer)
	}
	if ev.Transfer.Nick != "alice" || ev.Transfer.Direction != DCCIncoming {
		t.Errorf("transfer nick/direction = %q/%v, want alice/Incoming", ev.Transfer.Nick, ev.Transfer.Direction)
	}
}

func TestProcessRequestSendMalformedSizeDefaultsToMinusOne(t *testing.T) {
	m := NewDCCManager(func(string) {})
	event := m.ProcessRequest("alice", "a", "host", "DCC SEND report.pdf 3232235521 5000 not-a-number")

	ev, ok := event.(IncomingFileTransferEvent)
	if !ok {
		t.Fatalf("ProcessRequest() = %#v, want IncomingFileTransferEvent", event)
	}
	if ev.Transfer.Size != -1 {
		t.Errorf("Size = %d, want -1 on unparsable size field", ev.Transfer.Size)
	}
}

func TestProcessRequestChatProducesIncomingChatRequestEvent(t *testing.T) {
	m := NewDCCManager(func(string) {})
	event := m.ProcessRequest("bob", "b", "host", "DCC CHAT chat 3232235521 6000")

	ev, ok := event.(IncomingChatRequestEvent)
	if !ok {
		t.Fatalf("ProcessRequest() = %#v, want IncomingChatRequestEvent", event)
	}
	if !ev.Transfer.IsChat || ev.Transfer.Port != 6000 {
		t.Errorf("transfer = %+v, want IsChat=true port=6000", ev.Transfer)
	}
}

func TestProcessRequestUnknownTypeReturnsNil(t *testing.T) {
	m := NewDCCManager(func(string) {})
	if event := m.ProcessRequest("alice", "a", "host", "DCC WAT foo"); event != nil {
		t.Errorf("ProcessRequest() = %#v, want nil for an unrecognized DCC type", event)
	}
	if event := m.ProcessRequest("alice", "a", "host", "not even dcc"); event != nil {
		t.Errorf("ProcessRequest() = %#v, want nil for a non-DCC line", event)
	}
}

func TestDCCResumeAcceptHardcodesFilenameInReply(t *testing.T) {
	var sent []string
	m := NewDCCManager(func(line string) { sent = append(sent, line) })

	transfer := &DCCTransfer{Nick: "alice", Port: 5000, Filename: "real-name.zip"}
	m.AddAwaitingResume(transfer)

	event := m.ProcessRequest("alice", "a", "host", "DCC RESUME real-name.zip 5000 1024")
	if event != nil {
		t.Errorf("handleResume should not itself emit an event, got %#v", event)
	}

	if len(sent) != 1 {
		t.Fatalf("expected exactly one reply line, got %d: %v", len(sent), sent)
	}
	if !strings.Contains(sent[0], "ACCEPT file.ext 5000 1024") {
		t.Errorf("reply = %q, want it to hard-code file.ext per the preserved quirk", sent[0])
	}
	if transfer.Progress() != 1024 {
		t.Errorf("Progress() = %d, want 1024", transfer.Progress())
	}
}

func TestDCCResumeWithNoAwaitingTransferSendsNothing(t *testing.T) {
	var sent []string
	m := NewDCCManager(func(line string) { sent = append(sent, line) })

	m.ProcessRequest("alice", "a", "host", "DCC RESUME ghost.zip 9999 0")
	if len(sent) != 0 {
		t.Errorf("expected no reply for an unknown (nick, port) pair, got %v", sent)
	}
}

func TestDCCAcceptRemovesAwaitingResumeEntry(t *testing.T) {
	m := NewDCCManager(func(string) {})
	transfer := &DCCTransfer{Nick: "alice", Port: 5000}
	m.AddAwaitingResume(transfer)

	m.ProcessRequest("alice", "a", "host", "DCC ACCEPT file.ext 5000 2048")

	if got := m.takeAwaitingResume("alice", 5000); got != nil {
		t.Error("expected the awaiting-resume entry to be gone after ACCEPT")
	}
}

func TestRemoveAwaitingResumeDropsEntryWithoutCompleting(t *testing.T) {
	m := NewDCCManager(func(string) {})
	transfer := &DCCTransfer{Nick: "bob", Port: 7000}
	m.AddAwaitingResume(transfer)
	m.RemoveAwaitingResume(transfer)

	if got := m.takeAwaitingResume("bob", 7000); got != nil {
		t.Error("expected entry removed via RemoveAwaitingResume to be gone")
	}
}

func TestDCCTransferStringForChatVsSend(t *testing.T) {
	chat := &DCCTransfer{Nick: "alice", IsChat: true}
	if got := chat.String(); !strings.Contains(got, "CHAT") || !strings.Contains(got, "alice") {
		t.Errorf("chat.String() = %q, want it to mention CHAT and alice", got)
	}

	send := &DCCTransfer{Nick: "bob", Filename: "file.iso", Size: 1024}
	if got := send.String(); !strings.Contains(got, "file.iso") || !strings.Contains(got, "bob") {
		t.Errorf("send.String() = %q, want it to mention file.iso and bob", got)
	}
}
