package irc

import "time"

// DefaultHandler answers the RFC-mandated CTCP verbs (VERSION, PING,
// TIME, FINGER) with no configuration beyond what the connection's
// Identity already carries. It is registered automatically by
// NewConnection and may be removed via
// Connection.Handlers().Remove(conn.DefaultHandlerID).
type DefaultHandler struct{}

// NewDefaultHandler creates the default CTCP reply handler.
func NewDefaultHandler() *DefaultHandler { return &DefaultHandler{} }

func (*DefaultHandler) Capabilities() Capability { return Chat }

func (h *DefaultHandler) HandleEvent(conn *Connection, event Event) {
	req, ok := event.(CTCPRequestEvent)
	if !ok {
		return
	}
	switch req.Verb {
	case "VERSION":
		_ = conn.replyCTCP(req.Sender, "VERSION", conn.Identity.Version())
	case "PING":
		_ = conn.replyCTCP(req.Sender, "PING", req.Args)
	case "TIME":
		_ = conn.replyCTCP(req.Sender, "TIME", time.Now().Format(time.RFC1123Z))
	case "FINGER":
		_ = conn.replyCTCP(req.Sender, "FINGER", conn.Identity.Finger())
	}
}
