package irc

import "strings"

// DefaultChannelPrefixes are the characters that mark a MODE target as
// a channel rather than a user, absent an override.
const DefaultChannelPrefixes = "#&+!"

// modeArgSpec says whether a letter consumes an argument, and in which direction.
type modeArgSpec int

const (
	argNone modeArgSpec = iota
	argBoth
	argPlusOnly
)

var modeTable = map[byte]struct {
	kind ModeKind
	args modeArgSpec
}{
	'o': {ModeOp, argBoth},
	'v': {ModeVoice, argBoth},
	'k': {ModeChannelKey, argBoth},
	'l': {ModeChannelLimit, argPlusOnly},
	'b': {ModeChannelBan, argBoth},
	't': {ModeTopicProtection, argNone},
	'n': {ModeNoExternalMessages, argNone},
	'i': {ModeInviteOnly, argNone},
	'm': {ModeModerated, argNone},
	'p': {ModePrivate, argNone},
	's': {ModeSecret, argNone},
}

// IsChannelTarget reports whether target names a channel under prefixes
// (DefaultChannelPrefixes if prefixes is empty).
func IsChannelTarget(target, prefixes string) bool {
	if target == "" {
		return false
	}
	if prefixes == "" {
		prefixes = DefaultChannelPrefixes
	}
	return strings.IndexByte(prefixes, target[0]) >= 0
}

// ProcessChannelMode walks a MODE command's mode string left to right,
// emitting one ModeChangeEvent per recognized letter (via emit) and a
// trailing ModeEvent for the raw line, exactly mirroring the order the
// server intended the modes to apply in.
func ProcessChannelMode(registry *ChannelRegistry, channel, setter, modeLine string, emit func(Event)) {
	fields := strings.Fields(modeLine)
	if len(fields) == 0 {
		return
	}
	modeSpec := fields[0]
	args := fields[1:]
	argIdx := 0
	adding := true

	for i := 0; i < len(modeSpec); i++ {
		ch := modeSpec[i]
		switch ch {
		case '+':
			adding = true
			continue
		case '-':
			adding = false
			continue
		}

		spec, ok := modeTable[ch]
		if !ok {
			continue
		}

		takesArg := spec.args == argBoth || (spec.args == argPlusOnly && adding)
		var arg string
		if takesArg && argIdx < len(args) {
			arg = args[argIdx]
			argIdx++
		}

		if spec.kind == ModeOp || spec.kind == ModeVoice {
			if arg != "" {
				registry.ApplyOpVoice(channel, arg, spec.kind, adding)
			}
		}

		emit(ModeChangeEvent{
			Channel: channel,
			Setter:  setter,
			Kind:    spec.kind,
			Adding:  adding,
			Arg:     arg,
		})
	}

	emit(ModeEvent{Channel: channel, Setter: setter, ModeLine: modeLine})
}
