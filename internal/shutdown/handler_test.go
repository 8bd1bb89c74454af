package shutdown

import (
	"testing"
	"time"

	"github.com/jibble-go/ircengine/internal/irc"
)

// silentLogger discards everything; it exists only so tests don't need
// a real terminal to assert against.
type silentLogger struct{}

func (silentLogger) Info(string, ...interface{}) {}
func (silentLogger) Success(string, ...interface{}) {}
func (silentLogger) Warning(string, ...interface{}) {}
func (silentLogger) Error(string, ...interface{}) {}
func (silentLogger) ChannelMessage(string, string, string) {}
func (silentLogger) PrivateMessage(string, string) {}
func (silentLogger) ServerComm(string, ...interface{}) {}
func (silentLogger) Administrative(string, ...interface{}) {}
func (silentLogger) CTCPEvent(string, string) {}

func TestRegisterConnectionDisposesWithoutDialing(t *testing.T) {
	identity := irc.NewIdentity("bot", "bot", "Bot")
	conn := irc.NewConnection(identity, nil)

	h := NewHandler(silentLogger{}, time.Second)
	defer h.Stop()
	h.RegisterConnection(conn, "going away")

	h.Shutdown()

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("Shutdown did not complete for a never-connected Connection")
	}
}

func TestShutdownRunsFuncsInOrder(t *testing.T) {
	h := NewHandler(silentLogger{}, time.Second)
	defer h.Stop()

	var order []int
	h.RegisterShutdownFunc(func() error { order = append(order, 1); return nil })
	h.RegisterShutdownFunc(func() error { order = append(order, 2); return nil })

	h.Shutdown()
	<-h.Done()

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	h := NewHandler(silentLogger{}, time.Second)
	defer h.Stop()

	calls := 0
	h.RegisterShutdownFunc(func() error { calls++; return nil })

	h.Shutdown()
	h.Shutdown()
	<-h.Done()

	if calls != 1 {
		t.Errorf("shutdown func called %d times, want 1", calls)
	}
}
