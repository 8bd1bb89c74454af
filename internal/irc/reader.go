package irc

import (
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/jibble-go/ircengine/internal/output"
)

// IdleReadTimeout is the implementation-defined idle period after which
// the reader loop injects a synthetic PING directly through the raw
// write path rather than waiting on the queue.
const IdleReadTimeout = 5 * time.Minute

// reader owns the read side of the connection: it blocks on ReadLine,
// feeds every line to the dispatcher under dispatchMu (so logging from
// concurrent dispatch calls stays ordered), and recovers from a panic
// inside dispatch so one bad handler cannot take the connection down.
type reader struct {
	codec          *Codec
	writeMu        *sync.Mutex
	dispatchMu     sync.Mutex
	dispatch       func(line string)
	out            *output.Output
	onIdle         func() string // builds the synthetic PING line; nil disables idle-ping
	onClose        func()
	extendDeadline func() // refreshes the socket's read deadline; nil if none is set
	done           chan struct{}
}

func newReader(codec *Codec, writeMu *sync.Mutex, dispatch func(line string), out *output.Output, onIdle func() string, onClose func(), extendDeadline func()) *reader {
	return &reader{
		codec:          codec,
		writeMu:        writeMu,
		dispatch:       dispatch,
		out:            out,
		onIdle:         onIdle,
		onClose:        onClose,
		extendDeadline: extendDeadline,
		done:           make(chan struct{}),
	}
}

// run is the reader loop body. It terminates on EOF or any other read
// error, at which point onClose fires exactly once.
func (r *reader) run() {
	defer close(r.done)
	defer r.closeOnce()

	for {
		line, err := r.readWithIdlePing()
		if err != nil {
			return
		}
		r.dispatchLine(line)
	}
}

// readWithIdlePing delegates to the codec after refreshing the socket's
// read deadline via extendDeadline; it injects the synthetic PING once
// that deadline trips and ReadLine reports a timeout-shaped error.
func (r *reader) readWithIdlePing() (string, error) {
	if r.extendDeadline != nil {
		r.extendDeadline()
	}
	line, err := r.codec.ReadLine()
	if err != nil {
		if err == io.EOF {
			return "", err
		}
		if isTimeout(err) && r.onIdle != nil {
			r.writeMu.Lock()
			_ = r.codec.WriteLine(r.onIdle())
			r.writeMu.Unlock()
			if r.extendDeadline != nil {
				r.extendDeadline()
			}
			return r.codec.ReadLine()
		}
		return "", err
	}
	return line, nil
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	t, ok := err.(timeouter)
	return ok && t.Timeout()
}

// dispatchLine recovers from a panic raised anywhere inside dispatch,
// logging the error plus a captured stack trace, then continues the loop.
func (r *reader) dispatchLine(line string) {
	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			r.logPanic(rec, line)
		}
	}()
	r.dispatch(line)
}

func (r *reader) logPanic(rec interface{}, line string) {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	stack := string(buf[:n])
	if r.out != nil {
		r.out.LogErrorToFile("HandlerPanic", fmt.Sprintf("dispatch of %q panicked: %v", line, rec), fmt.Errorf("%s", stack))
	}
}

func (r *reader) closeOnce() {
	if r.onClose != nil {
		r.onClose()
	}
}
