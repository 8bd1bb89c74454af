package output

import (
	"fmt"
	"time"

	"github.com/fatih/color"
)

// Logger defines the interface for colored terminal output. The method
// set mirrors the three traffic categories a connection's handlers are
// grouped by (server/protocol, chat, membership/control) plus the
// general-purpose Info/Success/Warning/Error quartet used for anything
// outside the wire protocol itself (config, transport, shutdown).
type Logger interface {
	Info(format string, args ...interface{})
	Success(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})
	ChannelMessage(channel, nick, message string)
	PrivateMessage(nick, message string)
	// ServerComm logs protocol-level traffic: pings, numerics, raw
	// registration chatter.
	ServerComm(format string, args ...interface{})
	// Administrative logs membership/control events: join, part, kick,
	// nick change, mode.
	Administrative(format string, args ...interface{})
	// CTCPEvent logs a recognized CTCP request (VERSION, PING, TIME,
	// FINGER, DCC) before it is answered or routed.
	CTCPEvent(verb, nick string)
}

// ColorLogger implements Logger with colored terminal output
type ColorLogger struct {
	infoColor    *color.Color
	successColor *color.Color
	warningColor *color.Color
	errorColor   *color.Color
	channelColor *color.Color
	pmColor      *color.Color
	nickColor    *color.Color
	serverColor  *color.Color
	adminColor   *color.Color
	ctcpColor    *color.Color
}

// NewColorLogger creates a new ColorLogger with default color scheme
func NewColorLogger() *ColorLogger {
	return &ColorLogger{
		infoColor:    color.New(color.FgCyan),
		successColor: color.New(color.FgGreen, color.Bold),
		warningColor: color.New(color.FgYellow, color.Bold),
		errorColor:   color.New(color.FgRed, color.Bold),
		channelColor: color.New(color.FgBlue, color.Bold),
		pmColor:      color.New(color.FgMagenta, color.Bold),
		nickColor:    color.New(color.FgGreen),
		serverColor:  color.New(color.FgHiCyan),
		adminColor:   color.New(color.FgYellow),
		ctcpColor:    color.New(color.FgHiMagenta),
	}
}

// Info prints an informational message in cyan
func (l *ColorLogger) Info(format string, args ...interface{}) {
	timestamp := time.Now().Format("15:04:05")
	message := fmt.Sprintf(format, args...)
	_, _ = l.infoColor.Printf("[%s] INFO: %s\n", timestamp, message)
}

// Success prints a success message in bold green
func (l *ColorLogger) Success(format string, args ...interface{}) {
	timestamp := time.Now().Format("15:04:05")
	message := fmt.Sprintf(format, args...)
	_, _ = l.successColor.Printf("[%s] SUCCESS: %s\n", timestamp, message)
}

// Warning prints a warning message in bold yellow
func (l *ColorLogger) Warning(format string, args ...interface{}) {
	timestamp := time.Now().Format("15:04:05")
	message := fmt.Sprintf(format, args...)
	_, _ = l.warningColor.Printf("[%s] WARNING: %s\n", timestamp, message)
}

// Error prints an error message in bold red
func (l *ColorLogger) Error(format string, args ...interface{}) {
	timestamp := time.Now().Format("15:04:05")
	message := fmt.Sprintf(format, args...)
	_, _ = l.errorColor.Printf("[%s] ERROR: %s\n", timestamp, message)
}

// ChannelMessage prints a channel message with color-coded formatting
// Format: [HH:MM:SS] #channel <nick> message
func (l *ColorLogger) ChannelMessage(channel, nick, message string) {
	timestamp := time.Now().Format("15:04:05")
	fmt.Printf("[%s] ", timestamp)
	_, _ = l.channelColor.Printf("%s ", channel)
	_, _ = l.nickColor.Printf("<%s> ", nick)
	fmt.Printf("%s\n", message)
}

// PrivateMessage prints a private message with distinct color formatting
// Format: [HH:MM:SS] PM from nick: message
func (l *ColorLogger) PrivateMessage(nick, message string) {
	timestamp := time.Now().Format("15:04:05")
	fmt.Printf("[%s] ", timestamp)
	_, _ = l.pmColor.Printf("PM from ")
	_, _ = l.nickColor.Printf("%s: ", nick)
	fmt.Printf("%s\n", message)
}

// ServerComm prints protocol-level traffic in high-intensity cyan,
// distinct from Info so registration/ping/numeric noise can be told
// apart from application-level status lines at a glance.
func (l *ColorLogger) ServerComm(format string, args ...interface{}) {
	timestamp := time.Now().Format("15:04:05")
	message := fmt.Sprintf(format, args...)
	_, _ = l.serverColor.Printf("[%s] SERVER: %s\n", timestamp, message)
}

// Administrative prints membership/control events (join, part, kick,
// nick, mode) in plain yellow, distinct from the bold yellow Warning
// uses for actual problems.
func (l *ColorLogger) Administrative(format string, args ...interface{}) {
	timestamp := time.Now().Format("15:04:05")
	message := fmt.Sprintf(format, args...)
	_, _ = l.adminColor.Printf("[%s] ADMIN: %s\n", timestamp, message)
}

// CTCPEvent prints a one-line notice that a CTCP request arrived,
// before the default handler (or a caller's own) answers it.
func (l *ColorLogger) CTCPEvent(verb, nick string) {
	timestamp := time.Now().Format("15:04:05")
	_, _ = l.ctcpColor.Printf("[%s] CTCP %s from %s\n", timestamp, verb, nick)
}
