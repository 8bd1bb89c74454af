package irc

import (
	"strconv"
	"strings"
	"time"
)

// dispatcher owns the per-connection mutable pieces that parsing a line
// touches: the channel registry, the topic scratch table, the handler
// registry, and the outbound paths CTCP default replies and the DCC
// manager write through.
type dispatcher struct {
	conn     *Connection
	registry *ChannelRegistry
	handlers *HandlerRegistry
	dcc      *DCCManager

	topicMu    chan struct{} // binary semaphore guarding topics below
	topics     map[string]string
	channelPfx string
}

func newDispatcher(conn *Connection, registry *ChannelRegistry, handlers *HandlerRegistry, dcc *DCCManager, channelPfx string) *dispatcher {
	if channelPfx == "" {
		channelPfx = DefaultChannelPrefixes
	}
	d := &dispatcher{
		conn:       conn,
		registry:   registry,
		handlers:   handlers,
		dcc:        dcc,
		topicMu:    make(chan struct{}, 1),
		topics:     make(map[string]string),
		channelPfx: channelPfx,
	}
	d.topicMu <- struct{}{}
	return d
}

func (d *dispatcher) emit(event Event) {
	d.handlers.Dispatch(d.conn, event)
}

// logServer and logAdmin mirror a granular protocol/membership event to
// the configured output.Logger, if one is wired up. Both are no-ops on
// a bare Connection such as the ones unit tests build directly.
func (d *dispatcher) logServer(format string, args ...interface{}) {
	if d.conn == nil || d.conn.Out == nil {
		return
	}
	d.conn.Out.Logger.ServerComm(format, args...)
}

func (d *dispatcher) logAdmin(format string, args ...interface{}) {
	if d.conn == nil || d.conn.Out == nil {
		return
	}
	d.conn.Out.Logger.Administrative(format, args...)
}

func (d *dispatcher) logCTCP(verb, nick string) {
	if d.conn == nil || d.conn.Out == nil {
		return
	}
	d.conn.Out.Logger.CTCPEvent(verb, nick)
}

// Dispatch parses one raw line and routes it. It is invoked with the
// reader loop's dispatchMu held, so this method itself holds no locks
// beyond the ones the registry/dcc manager take internally.
func (d *dispatcher) Dispatch(raw string) {
	if strings.HasPrefix(raw, "PING ") {
		token := strings.TrimPrefix(raw, "PING ")
		d.logServer("ping %s", token)
		d.emit(ServerPingEvent{Token: token})
		return
	}

	msg, ok := ParseLine(raw)
	if !ok {
		d.emit(UnknownEvent{Line: raw})
		return
	}

	if IsNumeric(msg.Command) {
		d.dispatchNumeric(raw, msg)
		return
	}

	switch msg.Command {
	case "PRIVMSG", "NOTICE":
		d.dispatchMessage(msg)
	case "JOIN":
		d.dispatchJoin(msg)
	case "PART":
		d.dispatchPart(msg)
	case "NICK":
		d.dispatchNick(msg)
	case "QUIT":
		d.dispatchQuit(msg)
	case "KICK":
		d.dispatchKick(msg)
	case "MODE":
		d.dispatchMode(msg)
	case "TOPIC":
		d.dispatchTopic(msg)
	case "INVITE":
		d.dispatchInvite(msg)
	default:
		d.emit(UnknownEvent{Line: raw})
	}
}

func (d *dispatcher) dispatchMessage(msg Message) {
	text := msg.Text
	if IsCTCPMessage(text) {
		d.dispatchCTCP(msg, text)
		return
	}
	if msg.Command == "NOTICE" {
		d.emit(NoticeEvent{Target: msg.Target, Sender: msg.Nick, Login: msg.Login, Host: msg.Host, Text: text})
		return
	}
	if IsChannelTarget(msg.Target, d.channelPfx) {
		d.emit(MessageEvent{Channel: msg.Target, Sender: msg.Nick, Login: msg.Login, Host: msg.Host, Text: text})
		return
	}
	d.emit(PrivateMessageEvent{Sender: msg.Nick, Login: msg.Login, Host: msg.Host, Text: text})
}

func (d *dispatcher) dispatchCTCP(msg Message, raw string) {
	verb, args, ok := ParseCTCPMessage(raw)
	if !ok {
		d.emit(UnknownEvent{Line: msg.Raw})
		return
	}

	toChannel := IsChannelTarget(msg.Target, d.channelPfx)

	switch verb {
	case "ACTION":
		channel := ""
		if toChannel {
			channel = msg.Target
		}
		d.emit(ActionEvent{Channel: channel, Sender: msg.Nick, Login: msg.Login, Host: msg.Host, Text: args})
	case "VERSION", "PING", "TIME", "FINGER":
		d.logCTCP(verb, msg.Nick)
		d.emit(CTCPRequestEvent{Verb: verb, Args: args, Sender: msg.Nick, Login: msg.Login, Host: msg.Host})
	case "DCC":
		d.logCTCP(verb, msg.Nick)
		if event := d.dcc.ProcessRequest(msg.Nick, msg.Login, msg.Host, "DCC "+args); event != nil {
			d.emit(event)
		}
	default:
		d.emit(UnknownEvent{Line: msg.Raw})
	}
}

func (d *dispatcher) dispatchJoin(msg Message) {
	channel := msg.Target
	d.registry.OnJoin(channel, msg.Nick)
	d.logAdmin("%s joined %s", msg.Nick, channel)
	d.emit(JoinEvent{Channel: channel, Nick: msg.Nick, Login: msg.Login, Host: msg.Host})
}

func (d *dispatcher) dispatchPart(msg Message) {
	channel := msg.Target
	d.registry.OnPart(channel, msg.Nick)
	d.logAdmin("%s left %s (%s)", msg.Nick, channel, msg.Text)
	d.emit(PartEvent{Channel: channel, Nick: msg.Nick, Login: msg.Login, Host: msg.Host, Reason: msg.Text})
}

func (d *dispatcher) dispatchNick(msg Message) {
	newNick := msg.Text
	if newNick == "" && len(msg.Params) > 0 {
		newNick = msg.Params[0]
	}
	d.registry.OnNickChange(msg.Nick, newNick)
	if d.conn != nil && d.conn.Identity != nil && strings.EqualFold(msg.Nick, d.conn.Identity.CurrentNick()) {
		d.conn.Identity.setCurrentNick(newNick)
	}
	d.logAdmin("%s is now known as %s", msg.Nick, newNick)
	d.emit(NickChangeEvent{OldNick: msg.Nick, NewNick: newNick, Login: msg.Login, Host: msg.Host})
}

func (d *dispatcher) dispatchQuit(msg Message) {
	d.registry.OnQuit(msg.Nick)
	d.logAdmin("%s quit (%s)", msg.Nick, msg.Text)
	d.emit(QuitEvent{Nick: msg.Nick, Login: msg.Login, Host: msg.Host, Reason: msg.Text})
}

func (d *dispatcher) dispatchKick(msg Message) {
	channel := msg.Target
	recipient := ""
	if len(msg.Params) > 1 {
		recipient = msg.Params[1]
	}
	d.registry.OnKick(channel, recipient)
	d.logAdmin("%s kicked %s from %s (%s)", msg.Nick, recipient, channel, msg.Text)
	d.emit(KickEvent{Channel: channel, Kicker: msg.Nick, KickedBy: msg.Nick, Recipient: recipient, Reason: msg.Text})
}

func (d *dispatcher) dispatchMode(msg Message) {
	target := msg.Target
	modeLine := modeLineFromParams(msg)
	d.logAdmin("%s sets mode %s on %s", msg.Nick, modeLine, target)

	if IsChannelTarget(target, d.channelPfx) {
		ProcessChannelMode(d.registry, target, msg.Nick, modeLine, d.emit)
		return
	}
	d.emit(UserModeEvent{Nick: target, Setter: msg.Nick, ModeLine: modeLine})
}

// modeLineFromParams rebuilds "modeSpec arg1 arg2 ..." (everything after
// the MODE target) from the already-split params plus trailing text.
func modeLineFromParams(msg Message) string {
	if len(msg.Params) < 2 {
		return msg.Text
	}
	parts := msg.Params[1:]
	if msg.Text != "" {
		parts = append(append([]string{}, parts...), msg.Text)
	}
	return strings.Join(parts, " ")
}

func (d *dispatcher) dispatchTopic(msg Message) {
	channel := msg.Target
	d.emit(TopicEvent{
		Channel:  channel,
		Topic:    msg.Text,
		SetBy:    msg.Nick,
		Changed:  true,
		Observed: time.Now(),
	})
}

func (d *dispatcher) dispatchInvite(msg Message) {
	channel := msg.Text
	if channel == "" && len(msg.Params) > 1 {
		channel = msg.Params[1]
	}
	d.emit(InviteEvent{Sender: msg.Nick, Channel: channel})
}

// dispatchNumeric replicates the original parser's habit of locating
// the response substring by its byte offset in the raw line rather than
// re-joining the tokenized params: it searches for the numeric code
// starting just past where the sender-info token would have ended, and
// takes everything from four bytes past that match to the end of line.
// This reproduces a quirk (and its failure mode on pathological input)
// deliberately rather than normalizing it away.
func (d *dispatcher) dispatchNumeric(raw string, msg Message) {
	code := msg.Command
	response := numericResponse(raw, msg, code)

	switch code {
	case "322":
		d.handleList(response)
	case "332":
		d.handleTopicReply(response)
	case "333":
		d.handleTopicInfo(response)
	case "353":
		d.handleNames(response)
	case "366":
		d.handleEndOfNames(response)
	}

	d.logServer("%s %s", code, response)
	d.emit(ServerResponseEvent{Code: code, Response: response})
}

// numericResponse finds code in raw starting after the leading
// sender-info token, and returns everything from 4 bytes past that
// index to the end of the line — mirroring `indexOf(code, senderInfo
// length) + 4`. senderInfo is the first whitespace-delimited token of
// raw (the ":prefix" token, or the bare prefix if unprefixed).
func numericResponse(raw string, msg Message, code string) string {
	senderInfoLen := 0
	if sp := strings.IndexByte(raw, ' '); sp >= 0 {
		senderInfoLen = sp
	} else {
		senderInfoLen = len(raw)
	}
	idx := strings.Index(raw[senderInfoLen:], code)
	if idx < 0 {
		return msg.Text
	}
	start := senderInfoLen + idx + len(code) + 1
	if start >= len(raw) {
		return ""
	}
	return raw[start:]
}

func (d *dispatcher) handleList(response string) {
	head := response
	topic := ""
	if idx := strings.Index(response, ":"); idx >= 0 {
		head = response[:idx]
		topic = response[idx+1:]
	}
	fields := strings.Fields(head)
	if len(fields) < 3 {
		return
	}
	channel := fields[1]
	count, _ := strconv.Atoi(fields[2])
	d.emit(ChannelInfoEvent{Channel: channel, UserCount: count, Topic: topic})
}

func (d *dispatcher) handleTopicReply(response string) {
	head := response
	topic := ""
	if idx := strings.Index(response, ":"); idx >= 0 {
		head = response[:idx]
		topic = response[idx+1:]
	}
	fields := strings.Fields(head)
	if len(fields) < 2 {
		return
	}
	channel := fields[len(fields)-1]

	<-d.topicMu
	d.topics[strings.ToLower(channel)] = topic
	d.topicMu <- struct{}{}
}

func (d *dispatcher) handleTopicInfo(response string) {
	fields := strings.Fields(response)
	if len(fields) < 4 {
		return
	}
	channel, setBy, epochStr := fields[1], fields[2], fields[3]

	<-d.topicMu
	topic, ok := d.topics[strings.ToLower(channel)]
	if ok {
		delete(d.topics, strings.ToLower(channel))
	}
	d.topicMu <- struct{}{}
	if !ok {
		return
	}

	seconds, err := strconv.ParseInt(epochStr, 10, 64)
	epochMS := int64(0)
	if err == nil {
		epochMS = seconds * 1000
	}

	d.emit(TopicEvent{
		Channel:  channel,
		Topic:    topic,
		SetBy:    setBy,
		EpochMS:  epochMS,
		Changed:  false,
		Observed: time.Unix(seconds, 0),
	})
}

func (d *dispatcher) handleNames(response string) {
	head := response
	namesPart := response
	if idx := strings.Index(response, ":"); idx >= 0 {
		head = response[:idx]
		namesPart = response[idx+1:]
	}
	headFields := strings.Fields(head)
	if len(headFields) == 0 {
		return
	}
	channel := headFields[len(headFields)-1]
	names := strings.Fields(namesPart)
	d.registry.OnNamesReply(channel, names)
}

func (d *dispatcher) handleEndOfNames(response string) {
	head := response
	if idx := strings.Index(response, ":"); idx >= 0 {
		head = response[:idx]
	}
	fields := strings.Fields(head)
	if len(fields) == 0 {
		return
	}
	channel := fields[len(fields)-1]
	d.emit(UserListEvent{Channel: channel, Users: d.registry.Users(channel)})
}
