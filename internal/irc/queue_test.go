package irc

import "testing"

func TestOutboundQueueEnqueueOrder(t *testing.T) {
	q := NewOutboundQueue(nil)
	_ = q.Enqueue("first")
	_ = q.Enqueue("second")
	_ = q.EnqueuePriority("jump-ahead")

	want := []string{"jump-ahead", "first", "second"}
	for _, w := range want {
		line, ok := q.dequeue()
		if !ok || line != w {
			t.Fatalf("dequeue() = (%q, %v), want (%q, true)", line, ok, w)
		}
	}
	if _, ok := q.dequeue(); ok {
		t.Error("expected queue to be empty")
	}
}

func TestOutboundQueueEnqueueRejectsEmpty(t *testing.T) {
	q := NewOutboundQueue(nil)
	if err := q.Enqueue(""); err == nil {
		t.Error("expected error enqueuing an empty line")
	}
	if err := q.EnqueuePriority(""); err == nil {
		t.Error("expected error enqueuing an empty priority line")
	}
}

func TestOutboundQueueCompactKeepsEarliestOccurrence(t *testing.T) {
	q := NewOutboundQueue(nil)
	_ = q.Enqueue("PRIVMSG #c :hi")
	_ = q.Enqueue("PRIVMSG #c :bye")
	_ = q.Enqueue("PRIVMSG #c :hi")
	_ = q.Enqueue("PRIVMSG #c :hi")

	removed := q.Compact()
	if removed != 2 {
		t.Fatalf("Compact() removed = %d, want 2", removed)
	}
	if q.Size() != 2 {
		t.Fatalf("Size() after compact = %d, want 2", q.Size())
	}

	first, _ := q.dequeue()
	second, _ := q.dequeue()
	if first != "PRIVMSG #c :hi" || second != "PRIVMSG #c :bye" {
		t.Errorf("survivors = [%q, %q], want original relative order preserved", first, second)
	}
}

func TestOutboundQueueCompactIsIdempotentWhenNoDuplicates(t *testing.T) {
	q := NewOutboundQueue(nil)
	_ = q.Enqueue("a")
	_ = q.Enqueue("b")
	_ = q.Enqueue("c")

	if removed := q.Compact(); removed != 0 {
		t.Fatalf("first Compact() removed = %d, want 0", removed)
	}
	if removed := q.Compact(); removed != 0 {
		t.Fatalf("second Compact() removed = %d, want 0", removed)
	}
	if q.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", q.Size())
	}
}

func TestOutboundQueueWaitForLineReturnsFalseOnCloseWhenEmpty(t *testing.T) {
	q := NewOutboundQueue(nil)
	q.Close()
	if _, ok := q.waitForLine(); ok {
		t.Error("expected waitForLine to report false on a closed, empty queue")
	}
}

func TestOutboundQueueWaitForLineDrainsBeforeHonoringClose(t *testing.T) {
	q := NewOutboundQueue(nil)
	_ = q.Enqueue("pending")
	q.Close()

	line, ok := q.waitForLine()
	if !ok || line != "pending" {
		t.Fatalf("waitForLine() = (%q, %v), want (%q, true)", line, ok, "pending")
	}
	if _, ok := q.waitForLine(); ok {
		t.Error("expected waitForLine to report false once drained and closed")
	}
}
