package irc

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// DCCDirection says whether a DCCTransfer was offered to us or by us.
type DCCDirection int

const (
	DCCIncoming DCCDirection = iota
	DCCOutgoing
)

// DCCTransfer is the negotiation/state envelope for one DCC SEND or CHAT
// exchange. The byte-level transfer loop itself is an external
// collaborator's responsibility; this record only tracks what the
// negotiation needs.
type DCCTransfer struct {
	ID        uuid.UUID
	Direction DCCDirection
	Nick      string
	Login     string
	Host      string
	IsChat    bool
	Filename  string
	Address   uint32
	Port      int
	Size      int64

	mu             sync.Mutex
	progress       int64
	awaitingResume bool
}

// Progress returns the transfer's current byte offset.
func (t *DCCTransfer) Progress() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

func (t *DCCTransfer) setProgress(p int64) {
	t.mu.Lock()
	t.progress = p
	t.mu.Unlock()
}

// String renders the transfer for logging, with humanized byte counts.
func (t *DCCTransfer) String() string {
	if t.IsChat {
		return fmt.Sprintf("DCC CHAT with %s", t.Nick)
	}
	return fmt.Sprintf("DCC SEND %q from %s (%s of %s)", t.Filename, t.Nick,
		humanize.Bytes(uint64(t.Progress())), humanize.Bytes(uint64(maxInt64(t.Size, 0))))
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// DCCChatSession is the accepted side-channel socket for a DCC CHAT.
type DCCChatSession struct {
	Nick string
	Conn net.Conn
}

// awaitingKey is the (nick, port) composite key the awaiting-resume list is keyed by.
type awaitingKey struct {
	nick string
	port int
}

// DCCManager negotiates SEND/RESUME/ACCEPT/CHAT requests carried inside
// CTCP DCC payloads. Outgoing raw lines are written through send.
type DCCManager struct {
	send func(line string)

	mu             sync.Mutex
	awaitingResume map[awaitingKey]*DCCTransfer

	// PortList restricts outgoing DCC CHAT listeners to these ports; empty means any free port.
	PortList []int
	// AcceptTimeout bounds how long an outgoing DCC CHAT listener waits for the peer to connect.
	AcceptTimeout time.Duration
	// ExternalIP overrides the outward-facing address advertised in an outgoing DCC CHAT.
	ExternalIP net.IP
}

// NewDCCManager creates a manager that writes negotiation replies via send.
func NewDCCManager(send func(line string)) *DCCManager {
	return &DCCManager{
		send:           send,
		awaitingResume: make(map[awaitingKey]*DCCTransfer),
		AcceptTimeout:  60 * time.Second,
	}
}

// ProcessRequest handles one "DCC <type> <args>" CTCP payload from nick.
// It returns the resulting event, or nil if type is unrecognized.
func (m *DCCManager) ProcessRequest(nick, login, host, request string) Event {
	fields := strings.Fields(request)
	if len(fields) < 2 || fields[0] != "DCC" {
		return nil
	}
	typ := fields[1]
	args := fields[2:]

	switch typ {
	case "SEND":
		return m.handleSend(nick, login, host, args)
	case "RESUME":
		m.handleResume(nick, args)
		return nil
	case "ACCEPT":
		m.handleAccept(nick, args)
		return nil
	case "CHAT":
		return m.handleChat(nick, login, host, args)
	default:
		return nil
	}
}

func (m *DCCManager) handleSend(nick, login, host string, args []string) Event {
	if len(args) < 3 {
		return nil
	}
	filename := args[0]
	addr, _ := strconv.ParseUint(args[1], 10, 32)
	port, _ := strconv.Atoi(args[2])
	size := int64(-1)
	if len(args) >= 4 {
		if parsed, err := strconv.ParseInt(args[3], 10, 64); err == nil {
			size = parsed
		}
	}
	transfer := &DCCTransfer{
		ID:        uuid.New(),
		Direction: DCCIncoming,
		Nick:      nick,
		Login:     login,
		Host:      host,
		Filename:  filename,
		Address:   uint32(addr),
		Port:      port,
		Size:      size,
	}
	return IncomingFileTransferEvent{Transfer: transfer}
}

// AddAwaitingResume parks transfer in the awaiting-resume list keyed by
// (nick, port) until a matching RESUME/ACCEPT pair completes.
func (m *DCCManager) AddAwaitingResume(transfer *DCCTransfer) {
	transfer.mu.Lock()
	transfer.awaitingResume = true
	transfer.mu.Unlock()
	m.mu.Lock()
	m.awaitingResume[awaitingKey{nick: transfer.Nick, port: transfer.Port}] = transfer
	m.mu.Unlock()
}

// RemoveAwaitingResume drops transfer from the awaiting-resume list without completing it.
func (m *DCCManager) RemoveAwaitingResume(transfer *DCCTransfer) {
	m.mu.Lock()
	delete(m.awaitingResume, awaitingKey{nick: transfer.Nick, port: transfer.Port})
	m.mu.Unlock()
}

func (m *DCCManager) takeAwaitingResume(nick string, port int) *DCCTransfer {
	key := awaitingKey{nick: nick, port: port}
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.awaitingResume[key]
	if t != nil {
		delete(m.awaitingResume, key)
	}
	return t
}

func (m *DCCManager) handleResume(nick string, args []string) {
	if len(args) < 3 {
		return
	}
	port, err1 := strconv.Atoi(args[1])
	progress, err2 := strconv.ParseInt(args[2], 10, 64)
	if err1 != nil || err2 != nil {
		return
	}
	transfer := m.takeAwaitingResume(nick, port)
	if transfer == nil {
		return
	}
	transfer.setProgress(progress)
	// The filename here is hard-coded to "file.ext" in the original
	// implementation regardless of the transfer's real filename; this
	// quirk is preserved deliberately.
	m.send(FormatMessage("PRIVMSG", nick, FormatCTCPMessage("DCC", fmt.Sprintf("ACCEPT file.ext %d %d", port, progress))))
}

func (m *DCCManager) handleAccept(nick string, args []string) {
	if len(args) < 3 {
		return
	}
	port, err1 := strconv.Atoi(args[1])
	_, err2 := strconv.ParseInt(args[2], 10, 64)
	if err1 != nil || err2 != nil {
		return
	}
	// Only the matching awaiting-resume entry is removed. No event is
	// emitted and no receive is started here, and the progress value is
	// validated but not recorded; the byte-level transfer loop is outside
	// this package.
	m.takeAwaitingResume(nick, port)
}

func (m *DCCManager) handleChat(nick, login, host string, args []string) Event {
	if len(args) < 3 {
		return nil
	}
	addr, _ := strconv.ParseUint(args[1], 10, 32)
	port, _ := strconv.Atoi(args[2])
	transfer := &DCCTransfer{
		ID:        uuid.New(),
		Direction: DCCIncoming,
		Nick:      nick,
		Login:     login,
		Host:      host,
		IsChat:    true,
		Address:   uint32(addr),
		Port:      port,
	}
	return IncomingChatRequestEvent{Transfer: transfer}
}

// InitiateChat opens a listening socket on a port from PortList (or any
// free port), advertises it to nick over send, waits up to
// AcceptTimeout for a connection, and returns the accepted session. On
// any failure it returns (nil, false) — DCC negotiation failures are
// swallowed locally per the framework's error-handling design.
func (m *DCCManager) InitiateChat(nick string) (*DCCChatSession, bool) {
	listener, port, ok := m.listenOnConfiguredPort()
	if !ok {
		return nil, false
	}
	defer listener.Close()

	ip, ok := m.outwardIP(listener)
	if !ok {
		return nil, false
	}
	ipNum := IPToLong(ip[0], ip[1], ip[2], ip[3])

	m.send(FormatMessage("PRIVMSG", nick, FormatCTCPMessage("DCC", fmt.Sprintf("CHAT chat %d %d", ipNum, port))))

	if tcpListener, ok := listener.(*net.TCPListener); ok {
		_ = tcpListener.SetDeadline(time.Now().Add(m.AcceptTimeout))
	}
	conn, err := listener.Accept()
	if err != nil {
		return nil, false
	}
	return &DCCChatSession{Nick: nick, Conn: conn}, true
}

func (m *DCCManager) listenOnConfiguredPort() (net.Listener, int, bool) {
	if len(m.PortList) == 0 {
		l, err := net.Listen("tcp", ":0")
		if err != nil {
			return nil, 0, false
		}
		return l, l.Addr().(*net.TCPAddr).Port, true
	}
	for _, p := range m.PortList {
		l, err := net.Listen("tcp", fmt.Sprintf(":%d", p))
		if err == nil {
			return l, p, true
		}
	}
	return nil, 0, false
}

func (m *DCCManager) outwardIP(listener net.Listener) ([4]byte, bool) {
	if len(m.ExternalIP) >= 4 {
		ip4 := m.ExternalIP.To4()
		if ip4 != nil {
			return [4]byte{ip4[0], ip4[1], ip4[2], ip4[3]}, true
		}
	}
	addr, ok := listener.Addr().(*net.TCPAddr)
	if !ok || addr.IP == nil {
		return [4]byte{}, false
	}
	ip4 := addr.IP.To4()
	if ip4 == nil {
		// Fall back to the outbound-routing trick: dial out to
		// discover which local interface the OS would use.
		conn, err := net.Dial("udp", "8.8.8.8:80")
		if err != nil {
			return [4]byte{}, false
		}
		defer conn.Close()
		local := conn.LocalAddr().(*net.UDPAddr).IP.To4()
		if local == nil {
			return [4]byte{}, false
		}
		return [4]byte{local[0], local[1], local[2], local[3]}, true
	}
	return [4]byte{ip4[0], ip4[1], ip4[2], ip4[3]}, true
}
