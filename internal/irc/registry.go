package irc

import (
	"strings"
	"sync"
)

// User is a (prefix, nick) pair. Prefix is one of "", "+", "@", "@+" and
// is pure metadata: two Users are equal iff their nicks match
// case-insensitively.
type User struct {
	Nick   string
	Prefix string
}

// Equal reports whether u and o name the same nick, ignoring case and prefix.
func (u User) Equal(o User) bool {
	return strings.EqualFold(u.Nick, o.Nick)
}

func (u User) hasOp() bool    { return strings.Contains(u.Prefix, "@") }
func (u User) hasVoice() bool { return strings.Contains(u.Prefix, "+") }

func prefixFor(op, voice bool) string {
	switch {
	case op && voice:
		return "@+"
	case op:
		return "@"
	case voice:
		return "+"
	default:
		return ""
	}
}

// ChannelRegistry is the per-connection channel/user membership table.
// All mutation and enumeration happens under a single RWMutex; readers
// get a copied-out snapshot so they never observe a table mid-mutation.
type ChannelRegistry struct {
	mu       sync.RWMutex
	channels map[string]map[string]User // channel (lower) -> nick (lower) -> User
	botNick  string
}

// NewChannelRegistry creates an empty registry tracking botNick as "us".
func NewChannelRegistry(botNick string) *ChannelRegistry {
	return &ChannelRegistry{
		channels: make(map[string]map[string]User),
		botNick:  botNick,
	}
}

// SetBotNick updates which nick is "us" for the QUIT/PART/KICK self-checks below.
func (r *ChannelRegistry) SetBotNick(nick string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.botNick = nick
}

func (r *ChannelRegistry) isSelf(nick string) bool {
	return strings.EqualFold(nick, r.botNick)
}

// Channels returns a snapshot of the channel names we currently occupy.
func (r *ChannelRegistry) Channels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.channels))
	for c := range r.channels {
		out = append(out, c)
	}
	return out
}

// Users returns a snapshot of the users in channel, or nil if we are not in it.
func (r *ChannelRegistry) Users(channel string) []User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.channels[strings.ToLower(channel)]
	if members == nil {
		return nil
	}
	out := make([]User, 0, len(members))
	for _, u := range members {
		out = append(out, u)
	}
	return out
}

// OnJoin records nick joining channel. If nick is us, the channel is
// created in the registry (satisfying the "channels() reflects confirmed
// JOINs" invariant); otherwise the channel must already exist.
func (r *ChannelRegistry) OnJoin(channel, nick string) {
	key := strings.ToLower(channel)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isSelf(nick) {
		r.channels[key] = map[string]User{}
	}
	members := r.channels[key]
	if members == nil {
		return
	}
	members[strings.ToLower(nick)] = User{Nick: nick, Prefix: ""}
}

// OnPart removes nick from channel. If nick is us, the whole channel is dropped.
func (r *ChannelRegistry) OnPart(channel, nick string) {
	key := strings.ToLower(channel)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isSelf(nick) {
		delete(r.channels, key)
		return
	}
	if members := r.channels[key]; members != nil {
		delete(members, strings.ToLower(nick))
	}
}

// OnKick removes recipient from channel, dropping the channel entirely
// if recipient is us — same shape as OnPart, kept distinct because the
// dispatcher emits a different event for it.
func (r *ChannelRegistry) OnKick(channel, recipient string) {
	r.OnPart(channel, recipient)
}

// OnQuit removes nick from every channel. If nick is us, every channel
// we occupy is dropped.
func (r *ChannelRegistry) OnQuit(nick string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isSelf(nick) {
		r.channels = make(map[string]map[string]User)
		return
	}
	lower := strings.ToLower(nick)
	for _, members := range r.channels {
		delete(members, lower)
	}
}

// OnNickChange renames nick in every channel it occupies. If oldNick is
// us, our tracked bot nick moves too.
func (r *ChannelRegistry) OnNickChange(oldNick, newNick string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	oldLower := strings.ToLower(oldNick)
	for _, members := range r.channels {
		if u, ok := members[oldLower]; ok {
			delete(members, oldLower)
			u.Nick = newNick
			members[strings.ToLower(newNick)] = u
		}
	}
	if r.isSelf(oldNick) {
		r.botNick = newNick
	}
}

// OnNamesReply merges a RPL_NAMREPLY (353) token batch into channel.
// Each token may carry a single "@", "+" or "." sigil (others are
// treated as plain nicks) ahead of the nick itself.
func (r *ChannelRegistry) OnNamesReply(channel string, names []string) {
	key := strings.ToLower(channel)
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.channels[key]
	if members == nil {
		members = map[string]User{}
		r.channels[key] = members
	}
	for _, tok := range names {
		if tok == "" {
			continue
		}
		prefix, nick := splitNamePrefix(tok)
		members[strings.ToLower(nick)] = User{Nick: nick, Prefix: prefix}
	}
}

// splitNamePrefix strips a single leading "@"/"+"/"." sigil from a
// RPL_NAMREPLY token, normalizing "." (other) to no prefix.
func splitNamePrefix(tok string) (prefix, nick string) {
	if tok == "" {
		return "", ""
	}
	switch tok[0] {
	case '@':
		return "@", tok[1:]
	case '+':
		return "+", tok[1:]
	case '.':
		return "", tok[1:]
	default:
		return "", tok
	}
}

// ApplyOpVoice updates the (channel, nick) user's prefix for a granted
// or revoked op/voice flag, creating the user record if unknown so the
// new prefix is not lost. Returns the resulting prefix.
func (r *ChannelRegistry) ApplyOpVoice(channel, nick string, kind ModeKind, adding bool) string {
	key := strings.ToLower(channel)
	nickKey := strings.ToLower(nick)
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.channels[key]
	if members == nil {
		members = map[string]User{}
		r.channels[key] = members
	}
	u, ok := members[nickKey]
	if !ok {
		u = User{Nick: nick}
	}
	op, voice := u.hasOp(), u.hasVoice()
	if kind == ModeOp {
		op = adding
	} else {
		voice = adding
	}
	u.Prefix = prefixFor(op, voice)
	members[nickKey] = u
	return u.Prefix
}
