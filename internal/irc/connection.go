package irc

import (
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	engerrors "github.com/jibble-go/ircengine/internal/errors"
	"github.com/jibble-go/ircengine/internal/output"
)

// ConnectionSettings is the immutable-per-connection server address and
// transport configuration. Connect clones the value it is given.
type ConnectionSettings struct {
	Host      string
	Port      int
	Password  string
	TLS       bool
	VerifyTLS bool
}

// Identity is the set of fields a caller configures before connecting.
// Name is the nick we ask for; Nick (read via CurrentNick) only changes
// once the server confirms it, except during the registration retry
// loop described in Connection.register.
type Identity struct {
	mu sync.RWMutex

	name     string
	userName string
	realName string
	version  string
	finger   string
	verbose  bool

	nick string
}

// NewIdentity creates an Identity with sensible defaults for nick,
// username, real name, and a generic CTCP VERSION reply.
func NewIdentity(nick, userName, realName string) *Identity {
	return &Identity{
		name:     nick,
		nick:     nick,
		userName: userName,
		realName: realName,
		version:  "ircengine",
		finger:   "",
	}
}

func (id *Identity) SetNick(nick string)       { id.mu.Lock(); id.name = nick; id.mu.Unlock() }
func (id *Identity) SetUserName(name string)   { id.mu.Lock(); id.userName = name; id.mu.Unlock() }
func (id *Identity) SetRealName(name string)   { id.mu.Lock(); id.realName = name; id.mu.Unlock() }
func (id *Identity) SetVersion(version string) { id.mu.Lock(); id.version = version; id.mu.Unlock() }
func (id *Identity) SetFinger(finger string)   { id.mu.Lock(); id.finger = finger; id.mu.Unlock() }
func (id *Identity) SetVerbose(verbose bool)   { id.mu.Lock(); id.verbose = verbose; id.mu.Unlock() }

func (id *Identity) Name() string     { id.mu.RLock(); defer id.mu.RUnlock(); return id.name }
func (id *Identity) UserName() string { id.mu.RLock(); defer id.mu.RUnlock(); return id.userName }
func (id *Identity) RealName() string { id.mu.RLock(); defer id.mu.RUnlock(); return id.realName }
func (id *Identity) Version() string  { id.mu.RLock(); defer id.mu.RUnlock(); return id.version }
func (id *Identity) Finger() string   { id.mu.RLock(); defer id.mu.RUnlock(); return id.finger }
func (id *Identity) Verbose() bool    { id.mu.RLock(); defer id.mu.RUnlock(); return id.verbose }

// CurrentNick returns the nick the server has most recently confirmed for us.
func (id *Identity) CurrentNick() string { id.mu.RLock(); defer id.mu.RUnlock(); return id.nick }

func (id *Identity) setCurrentNick(nick string) { id.mu.Lock(); id.nick = nick; id.mu.Unlock() }

// Connection is a single IRC client session: socket, codec, outbound
// queue, reader/sender loops, channel registry, handler registry, and
// DCC manager, wired together as one collaborator-facing object.
type Connection struct {
	Identity *Identity
	Out      *output.Output

	AutoNickChange  bool
	SendDelay       time.Duration
	CompactEvery    time.Duration
	ChannelPrefixes string

	// DefaultHandlerID is the token of the DefaultHandler that
	// NewConnection registers; pass it to Handlers().Remove to drop it.
	DefaultHandlerID uuid.UUID

	mu           sync.Mutex
	conn         net.Conn
	codec        *Codec
	writeMu      sync.Mutex
	queue        *OutboundQueue
	snd          *sender
	rdr          *reader
	registry     *ChannelRegistry
	handlers     *HandlerRegistry
	dcc          *DCCManager
	dispatch     *dispatcher
	lastSettings *ConnectionSettings

	connected     bool
	disposed      bool
	stopCompactor chan struct{}
}

// NewConnection creates a not-yet-connected Connection. out may be nil,
// in which case panics in dispatch are swallowed without being logged
// to a file.
func NewConnection(identity *Identity, out *output.Output) *Connection {
	c := &Connection{
		Identity:        identity,
		Out:             out,
		AutoNickChange:  true,
		SendDelay:       DefaultSendDelay,
		ChannelPrefixes: DefaultChannelPrefixes,
		registry:        NewChannelRegistry(identity.Name()),
		handlers:        NewHandlerRegistry(),
	}
	c.DefaultHandlerID = c.handlers.Register(NewDefaultHandler())
	return c
}

// Handlers exposes the registry so callers can Register/Remove handlers.
func (c *Connection) Handlers() *HandlerRegistry { return c.handlers }

// SetSendDelay changes the sender loop's inter-message pacing. It
// rejects a negative delay and takes effect on the next Connect (the
// running sender, if any, keeps its delay until reconnect).
func (c *Connection) SetSendDelay(d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return setDelay(&c.SendDelay, d)
}

// Channels returns the channels the registry currently believes we occupy.
func (c *Connection) Channels() []string { return c.registry.Channels() }

// Users returns the known membership of channel.
func (c *Connection) Users(channel string) []User { return c.registry.Users(channel) }

// IsConnected reports whether a session is live.
func (c *Connection) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Connect dials settings, performs the registration handshake, and on
// success starts the reader and sender loops. It fails with
// AlreadyConnected if a session is already live.
func (c *Connection) Connect(settings ConnectionSettings) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return engerrors.NewAlreadyConnected()
	}
	c.mu.Unlock()

	cloned := settings
	c.registry = NewChannelRegistry(c.Identity.Name())

	address := net.JoinHostPort(cloned.Host, strconv.Itoa(cloned.Port))
	var conn net.Conn
	var err error
	if cloned.TLS {
		conn, err = tls.Dial("tcp", address, &tls.Config{
			ServerName:         cloned.Host,
			InsecureSkipVerify: !cloned.VerifyTLS,
		})
	} else {
		conn, err = net.Dial("tcp", address)
	}
	if err != nil {
		ioErr := engerrors.NewIoFailure("connect to "+address, err)
		if c.Out != nil {
			c.Out.LogEngineError("dial failed", ioErr)
		}
		return ioErr
	}

	c.mu.Lock()
	c.conn = conn
	c.codec = NewCodec(conn, conn)
	c.dcc = NewDCCManager(c.sendPriority)
	c.dispatch = newDispatcher(c, c.registry, c.handlers, c.dcc, c.ChannelPrefixes)
	c.mu.Unlock()

	if err := c.register(cloned); err != nil {
		_ = conn.Close()
		if c.Out != nil {
			c.Out.LogEngineError("registration failed against "+address, err)
		}
		return err
	}

	c.mu.Lock()
	c.lastSettings = &cloned
	c.connected = true
	c.disposed = false
	c.queue = NewOutboundQueue(c.loggerOrNil())
	c.stopCompactor = make(chan struct{})
	c.snd = newSender(c.queue, c.codec, &c.writeMu, c.SendDelay)
	c.rdr = newReader(c.codec, &c.writeMu, c.dispatch.Dispatch, c.Out, c.idlePingLine, c.onReaderClosed, c.extendReadDeadline)
	c.mu.Unlock()

	go c.rdr.run()
	go c.snd.run()
	if c.CompactEvery > 0 {
		go c.queue.StartCompactor(c.CompactEvery, c.stopCompactor)
	}

	c.dispatch.emit(ConnectEvent{})
	return nil
}

func (c *Connection) loggerOrNil() output.Logger {
	if c.Out == nil {
		return nil
	}
	return c.Out.Logger
}

// register runs the PASS/NICK/USER handshake and blocks on the raw
// socket until registration completes or a fatal condition occurs.
// Every line seen during registration is also fed to the dispatcher so
// that server notices sent ahead of 004 are not lost.
func (c *Connection) register(settings ConnectionSettings) error {
	if settings.Password != "" {
		if err := c.writeRaw(FormatMessage("PASS", settings.Password)); err != nil {
			return engerrors.NewIoFailure("write PASS", err)
		}
	}

	nick := c.Identity.Name()
	if err := c.writeRaw(FormatMessage("NICK", nick)); err != nil {
		return engerrors.NewIoFailure("write NICK", err)
	}
	if err := c.writeRaw(FormatMessage("USER", c.Identity.UserName(), "8", "*", c.Identity.RealName())); err != nil {
		return engerrors.NewIoFailure("write USER", err)
	}

	// altIndex starts at 1 so the first collision retry is nick+"2", not
	// nick+"1": the original nick is attempt 1.
	altIndex := 1
	for {
		// The reference implementation updates the tracked current
		// nick on every loop pass rather than only on confirmation;
		// preserved here rather than "fixed", since a caller reading
		// CurrentNick() mid-registration already observes an
		// unconfirmed value on the wire-level implementation this is
		// modeled on.
		c.Identity.setCurrentNick(nick)

		line, err := c.codec.ReadLine()
		if err != nil {
			return engerrors.NewIoFailure("read during registration", err)
		}

		c.dispatch.Dispatch(line)

		msg, ok := ParseLine(line)
		if !ok || !IsNumeric(msg.Command) {
			continue
		}

		switch msg.Command {
		case "004":
			c.Identity.setCurrentNick(nick)
			c.registry.SetBotNick(nick)
			return nil
		case "433":
			if !c.AutoNickChange {
				return engerrors.NewNickAlreadyInUse(nick)
			}
			altIndex++
			nick = fmt.Sprintf("%s%d", c.Identity.Name(), altIndex)
			if err := c.writeRaw(FormatMessage("NICK", nick)); err != nil {
				return engerrors.NewIoFailure("write NICK retry", err)
			}
		case "439":
			// Server asked us to wait before retrying; we don't retry early.
		default:
			if isFatalRegistration(msg.Command) {
				return engerrors.NewIrcError(line)
			}
		}
	}
}

func isFatalRegistration(code string) bool {
	if len(code) != 3 {
		return false
	}
	if code == "433" || code == "439" {
		return false
	}
	return code[0] == '4' || code[0] == '5'
}

func (c *Connection) writeRaw(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.codec.WriteLine(line)
}

func (c *Connection) extendReadDeadline() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		_ = conn.SetReadDeadline(time.Now().Add(IdleReadTimeout))
	}
}

func (c *Connection) idlePingLine() string {
	return FormatMessage("PING", strconv.FormatInt(time.Now().Unix(), 10))
}

func (c *Connection) onReaderClosed() {
	c.mu.Lock()
	wasDisposed := c.disposed
	conn := c.conn
	c.connected = false
	c.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
	if !wasDisposed {
		c.dispatch.emit(DisconnectEvent{})
	}
}

// Send enqueues line for ordinary (non-priority) delivery.
func (c *Connection) Send(line string) error {
	c.mu.Lock()
	q := c.queue
	c.mu.Unlock()
	if q == nil {
		return engerrors.NewNotConnected()
	}
	return q.Enqueue(line)
}

// sendPriority is the DCC manager's outbound path: small negotiation
// replies should not wait behind a large backlog of ordinary traffic.
func (c *Connection) sendPriority(line string) {
	c.mu.Lock()
	q := c.queue
	c.mu.Unlock()
	if q == nil {
		return
	}
	_ = q.EnqueuePriority(line)
}

// Join sends a JOIN for channel.
func (c *Connection) Join(channel string) error { return c.Send(FormatMessage("JOIN", channel)) }

// Part sends a PART for channel with an optional reason.
func (c *Connection) Part(channel, reason string) error {
	if reason == "" {
		return c.Send(FormatMessage("PART", channel))
	}
	return c.Send(FormatMessage("PART", channel, reason))
}

// PrivMsg sends a PRIVMSG to target (a channel or a nick).
func (c *Connection) PrivMsg(target, text string) error {
	return c.Send(FormatMessage("PRIVMSG", target, text))
}

// Notice sends a NOTICE to target.
func (c *Connection) Notice(target, text string) error {
	return c.Send(FormatMessage("NOTICE", target, text))
}

func (c *Connection) replyCTCP(target, verb, args string) error {
	return c.Notice(target, FormatCTCPMessage(verb, args))
}

// Disconnect sends QUIT and leaves socket teardown to the server
// closing its end, which the reader loop observes as EOF.
func (c *Connection) Disconnect(reason string) error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return engerrors.NewNotConnected()
	}
	c.mu.Unlock()

	if reason == "" {
		return c.writeRaw("QUIT")
	}
	return c.writeRaw(FormatMessage("QUIT", reason))
}

// Dispose interrupts the sender and tears down the reader without
// emitting a disconnect event, for callers that are shutting down
// deliberately rather than observing a server-initiated close.
func (c *Connection) Dispose() {
	c.mu.Lock()
	c.disposed = true
	conn := c.conn
	queue := c.queue
	stopCompactor := c.stopCompactor
	c.connected = false
	c.mu.Unlock()

	if queue != nil {
		queue.Close()
	}
	if stopCompactor != nil {
		close(stopCompactor)
	}
	if conn != nil {
		_ = conn.Close()
	}
}

// Reconnect re-dials the last settings passed to Connect. It fails
// with NotConnected if Connect has never succeeded.
func (c *Connection) Reconnect() error {
	c.mu.Lock()
	settings := c.lastSettings
	c.mu.Unlock()
	if settings == nil {
		return engerrors.NewNotConnected()
	}
	return c.Connect(*settings)
}

// StartIdentServer answers a single RFC 1413 ident query on port 113
// with the configured username, then shuts down.
func (c *Connection) StartIdentServer() error {
	return startIdentServer(c.Identity.UserName(), 60*time.Second)
}
