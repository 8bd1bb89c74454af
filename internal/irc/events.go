package irc

import "time"

// Capability marks which category of event a Handler wants delivered to it.
type Capability int

const (
	// ServerComm covers pings, numerics, connect/disconnect and unknown lines — connection-level traffic.
	ServerComm Capability = 1 << iota
	// Chat covers channel/private messages, actions, topics, invites.
	Chat
	// Administrative covers join/part/quit/kick/nick/mode membership events.
	Administrative
	// Full is the union of every category.
	Full = ServerComm | Chat | Administrative
)

// Category is the capability bucket a given event belongs to.
type Category int

const (
	CategoryServerComm Category = iota
	CategoryChat
	CategoryAdministrative
)

func (c Category) inCapability(cap Capability) bool {
	switch c {
	case CategoryServerComm:
		return cap&ServerComm != 0
	case CategoryChat:
		return cap&Chat != 0
	case CategoryAdministrative:
		return cap&Administrative != 0
	}
	return false
}

// Event is implemented by every typed event the dispatcher emits.
type Event interface {
	Category() Category
}

// ConnectEvent is emitted once registration (numeric 004) completes.
type ConnectEvent struct{}

func (ConnectEvent) Category() Category { return CategoryServerComm }

// DisconnectEvent is emitted when the reader loop observes the socket close.
type DisconnectEvent struct{}

func (DisconnectEvent) Category() Category { return CategoryServerComm }

// ServerPingEvent is emitted for a raw "PING <token>" line from the server.
type ServerPingEvent struct{ Token string }

func (ServerPingEvent) Category() Category { return CategoryServerComm }

// ServerResponseEvent is the generic forwarding of every numeric reply.
type ServerResponseEvent struct {
	Code     string
	Response string
}

func (ServerResponseEvent) Category() Category { return CategoryServerComm }

// MessageEvent is a PRIVMSG delivered to a channel.
type MessageEvent struct {
	Channel string
	Sender  string
	Login   string
	Host    string
	Text    string
}

func (MessageEvent) Category() Category { return CategoryChat }

// PrivateMessageEvent is a PRIVMSG delivered to us directly.
type PrivateMessageEvent struct {
	Sender string
	Login  string
	Host   string
	Text   string
}

func (PrivateMessageEvent) Category() Category { return CategoryChat }

// NoticeEvent is a NOTICE of any kind.
type NoticeEvent struct {
	Target string
	Sender string
	Login  string
	Host   string
	Text   string
}

func (NoticeEvent) Category() Category { return CategoryChat }

// ActionEvent is a CTCP ACTION ("/me") inside a PRIVMSG.
type ActionEvent struct {
	Channel string // empty if sent privately
	Sender  string
	Login   string
	Host    string
	Text    string
}

func (ActionEvent) Category() Category { return CategoryChat }

// InviteEvent is an INVITE targeting us.
type InviteEvent struct {
	Sender  string
	Channel string
}

func (InviteEvent) Category() Category { return CategoryChat }

// TopicEvent is emitted both for a live TOPIC command and for a stitched
// RPL_TOPIC/RPL_TOPICINFO pair.
type TopicEvent struct {
	Channel  string
	Topic    string
	SetBy    string
	EpochMS  int64
	Changed  bool
	Observed time.Time
}

func (TopicEvent) Category() Category { return CategoryChat }

// ChannelInfoEvent is emitted for RPL_LIST (322).
type ChannelInfoEvent struct {
	Channel   string
	UserCount int
	Topic     string
}

func (ChannelInfoEvent) Category() Category { return CategoryServerComm }

// UserListEvent is emitted for RPL_ENDOFNAMES (366): a snapshot of the
// channel's user set at that point.
type UserListEvent struct {
	Channel string
	Users   []User
}

func (UserListEvent) Category() Category { return CategoryAdministrative }

// JoinEvent is emitted for any JOIN, including our own.
type JoinEvent struct {
	Channel string
	Nick    string
	Login   string
	Host    string
}

func (JoinEvent) Category() Category { return CategoryAdministrative }

// PartEvent is emitted for any PART.
type PartEvent struct {
	Channel string
	Nick    string
	Login   string
	Host    string
	Reason  string
}

func (PartEvent) Category() Category { return CategoryAdministrative }

// NickChangeEvent is emitted for any NICK.
type NickChangeEvent struct {
	OldNick string
	NewNick string
	Login   string
	Host    string
}

func (NickChangeEvent) Category() Category { return CategoryAdministrative }

// QuitEvent is emitted for any QUIT.
type QuitEvent struct {
	Nick   string
	Login  string
	Host   string
	Reason string
}

func (QuitEvent) Category() Category { return CategoryAdministrative }

// KickEvent is emitted for any KICK.
type KickEvent struct {
	Channel   string
	Kicker    string
	KickedBy  string
	Recipient string
	Reason    string
}

func (KickEvent) Category() Category { return CategoryAdministrative }

// UnknownEvent is emitted for any line that matches no command rule.
type UnknownEvent struct {
	Line string
}

func (UnknownEvent) Category() Category { return CategoryServerComm }

// ModeEvent is the generic aggregate event emitted after all granular
// mode-letter events for a single MODE command.
type ModeEvent struct {
	Channel  string
	Setter   string
	ModeLine string
}

func (ModeEvent) Category() Category { return CategoryAdministrative }

// UserModeEvent is emitted for a MODE command whose target is a user, not a channel.
type UserModeEvent struct {
	Nick     string
	Setter   string
	ModeLine string
}

func (UserModeEvent) Category() Category { return CategoryAdministrative }

// ModeChangeEvent is one granular mode-letter event, e.g. Op/Deop/Voice/SetChannelKey.
type ModeChangeEvent struct {
	Channel string
	Setter  string
	Kind    ModeKind
	Adding  bool
	Arg     string // nick, key, ban mask, or limit as a string; empty if none
}

func (ModeChangeEvent) Category() Category { return CategoryAdministrative }

// ModeKind names one of the recognized channel mode letters.
type ModeKind int

const (
	ModeOp ModeKind = iota
	ModeVoice
	ModeChannelKey
	ModeChannelLimit
	ModeChannelBan
	ModeTopicProtection
	ModeNoExternalMessages
	ModeInviteOnly
	ModeModerated
	ModePrivate
	ModeSecret
)

// IncomingFileTransferEvent is emitted when a DCC SEND offer arrives.
type IncomingFileTransferEvent struct {
	Transfer *DCCTransfer
}

func (IncomingFileTransferEvent) Category() Category { return CategoryChat }

// IncomingChatRequestEvent is emitted when a DCC CHAT offer arrives.
type IncomingChatRequestEvent struct {
	Transfer *DCCTransfer
}

func (IncomingChatRequestEvent) Category() Category { return CategoryChat }

// CTCPRequestEvent is emitted for a recognized RFC-mandated CTCP verb
// (VERSION/PING/TIME/FINGER) so that the reply itself flows through the
// ordinary handler registry rather than being hard-wired into the
// dispatcher. The default handler answers these; removing it silences
// the automatic replies without touching the parser.
type CTCPRequestEvent struct {
	Verb   string
	Args   string
	Sender string
	Login  string
	Host   string
}

func (CTCPRequestEvent) Category() Category { return CategoryChat }
