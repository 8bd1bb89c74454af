package irc

import (
	"strings"
)

const ctcpDelim = "\x01"

// IsCTCPMessage reports whether message is wrapped in the CTCP delimiter.
func IsCTCPMessage(message string) bool {
	return len(message) >= 2 && strings.HasPrefix(message, ctcpDelim) && strings.HasSuffix(message, ctcpDelim)
}

// ParseCTCPMessage extracts the verb and argument string from a CTCP payload.
func ParseCTCPMessage(message string) (verb, args string, ok bool) {
	if !IsCTCPMessage(message) {
		return "", "", false
	}
	inner := strings.Trim(message, ctcpDelim)
	parts := strings.SplitN(inner, " ", 2)
	verb = strings.ToUpper(parts[0])
	if len(parts) > 1 {
		args = parts[1]
	}
	return verb, args, true
}

// FormatCTCPMessage wraps verb/args in the CTCP delimiter for an outgoing line.
func FormatCTCPMessage(verb, args string) string {
	if args == "" {
		return ctcpDelim + verb + ctcpDelim
	}
	return ctcpDelim + verb + " " + args + ctcpDelim
}
