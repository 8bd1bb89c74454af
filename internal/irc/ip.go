package irc

import (
	"fmt"

	engerrors "github.com/jibble-go/ircengine/internal/errors"
)

// IPToLong encodes four octets as the big-endian unsigned 32-bit integer
// DCC uses on the wire: ((b0*256+b1)*256+b2)*256+b3.
func IPToLong(b0, b1, b2, b3 byte) uint32 {
	return ((uint32(b0)*256+uint32(b1))*256+uint32(b2))*256 + uint32(b3)
}

// LongToIP is the inverse of IPToLong, returning the four octets as a
// length-4 byte array. It always succeeds.
func LongToIP(n uint32) [4]byte {
	return [4]byte{
		byte(n >> 24),
		byte(n >> 16),
		byte(n >> 8),
		byte(n),
	}
}

// IPBytesToLong is the slice-based counterpart of IPToLong, validating
// the RFC-mandated four-byte length.
func IPBytesToLong(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, engerrors.NewInvalidArgument(fmt.Sprintf("ip byte slice must have length 4, got %d", len(b)))
	}
	return IPToLong(b[0], b[1], b[2], b[3]), nil
}
