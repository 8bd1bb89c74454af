package irc

import (
	"sync"
	"time"

	engerrors "github.com/jibble-go/ircengine/internal/errors"
)

// DefaultSendDelay is the default inter-message pacing the sender loop sleeps for.
const DefaultSendDelay = 1000 * time.Millisecond

// sender drains the outbound queue at a fixed pace, writing each line
// through the codec. It owns the writer-side mutex so that the idle-ping
// injection in the reader loop can still get a line out atomically.
type sender struct {
	queue   *OutboundQueue
	codec   *Codec
	writeMu *sync.Mutex
	delay   time.Duration
	done    chan struct{}
}

func newSender(queue *OutboundQueue, codec *Codec, writeMu *sync.Mutex, delay time.Duration) *sender {
	if delay < 0 {
		delay = 0
	}
	return &sender{queue: queue, codec: codec, writeMu: writeMu, delay: delay, done: make(chan struct{})}
}

// run is the sender loop body: sleep, take the next line (blocking),
// write it. It returns once the queue has been closed and drained.
func (s *sender) run() {
	defer close(s.done)
	for {
		if s.delay > 0 {
			time.Sleep(s.delay)
		}
		line, ok := s.queue.waitForLine()
		if !ok {
			return
		}
		s.writeMu.Lock()
		_ = s.codec.WriteLine(line)
		s.writeMu.Unlock()
	}
}

// setDelay validates and applies a new inter-message delay.
func setDelay(cur *time.Duration, d time.Duration) error {
	if d < 0 {
		return engerrors.NewInvalidArgument("send delay must be non-negative")
	}
	*cur = d
	return nil
}
