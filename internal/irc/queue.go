package irc

import (
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	engerrors "github.com/jibble-go/ircengine/internal/errors"
	"github.com/jibble-go/ircengine/internal/output"
)

// OutboundQueue is the FIFO of raw lines awaiting the sender loop,
// supporting a priority prepend in addition to the normal append.
// Bounded only by memory, guarded by a single mutex; the sender loop's
// fixed-delay pacing does the flood control instead of an admission
// check here.
type OutboundQueue struct {
	mu     sync.Mutex
	lines  []string
	notify chan struct{}
	closed bool
	logger output.Logger
}

// NewOutboundQueue creates an empty queue. logger may be nil.
func NewOutboundQueue(logger output.Logger) *OutboundQueue {
	return &OutboundQueue{
		notify: make(chan struct{}, 1),
		logger: logger,
	}
}

// Enqueue appends line to the tail of the queue. An empty line is rejected.
func (q *OutboundQueue) Enqueue(line string) error {
	if line == "" {
		return engerrors.NewInvalidArgument("cannot enqueue an empty line")
	}
	q.mu.Lock()
	q.lines = append(q.lines, line)
	q.mu.Unlock()
	q.wake()
	return nil
}

// EnqueuePriority prepends line ahead of any line already queued.
func (q *OutboundQueue) EnqueuePriority(line string) error {
	if line == "" {
		return engerrors.NewInvalidArgument("cannot enqueue an empty line")
	}
	q.mu.Lock()
	q.lines = append([]string{line}, q.lines...)
	q.mu.Unlock()
	q.wake()
	return nil
}

func (q *OutboundQueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Size returns a best-effort count of pending lines.
func (q *OutboundQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lines)
}

// dequeue removes and returns the head line, or ok=false if empty.
func (q *OutboundQueue) dequeue() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.lines) == 0 {
		return "", false
	}
	line := q.lines[0]
	q.lines = q.lines[1:]
	return line, true
}

// Close marks the queue as shutting down; the sender loop's blocking
// wait returns once the queue drains rather than hanging forever.
func (q *OutboundQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

// waitForLine blocks until a line is available or the queue closes with
// nothing left to send.
func (q *OutboundQueue) waitForLine() (string, bool) {
	for {
		if line, ok := q.dequeue(); ok {
			return line, true
		}
		q.mu.Lock()
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return "", false
		}
		<-q.notify
	}
}

// Compact performs one dedup pass: for each line value, only the
// earliest occurrence in the current snapshot survives. This mirrors
// the "removeLastOccurrence" approach of the original compactor —
// walking from the back and dropping later duplicates leaves the
// head-nearest copy untouched.
func (q *OutboundQueue) Compact() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	seen := make(map[string]bool, len(q.lines))
	kept := make([]string, 0, len(q.lines))
	removed := 0
	for _, line := range q.lines {
		if seen[line] {
			removed++
			continue
		}
		seen[line] = true
		kept = append(kept, line)
	}
	q.lines = kept
	if removed > 0 && q.logger != nil {
		q.logger.Info("compaction removed %s duplicate line(s), %s remaining", humanize.Comma(int64(removed)), humanize.Comma(int64(len(kept))))
	}
	return removed
}

// StartCompactor runs Compact once per interval until stop is closed.
// A zero or negative interval disables compaction entirely.
func (q *OutboundQueue) StartCompactor(interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			q.Compact()
		}
	}
}
