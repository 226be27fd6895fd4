package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// Magic is the frame sync constant at the start of every header,
	// little-endian on the wire.
	Magic = 0x55AA55AA

	// HeaderSize is the fixed size of a message header in bytes.
	HeaderSize = 16

	// DefaultPacketMax is the largest payload the dongle negotiates by
	// default. Headers announcing more than the configured limit are
	// treated as corrupt.
	DefaultPacketMax = 49152
)

// Protocol errors. All of them mean "drop and resync", never "tear down the
// connection" - the transport stays up and the reader rescans for the next
// valid header.
var (
	ErrShortHeader      = errors.New("protocol: not enough bytes for header")
	ErrBadMagic         = errors.New("protocol: invalid magic number")
	ErrBadTypeCheck     = errors.New("protocol: type check mismatch")
	ErrOversizedPayload = errors.New("protocol: payload length exceeds packet max")
)

// Header is the 16-byte frame header preceding every message:
//
//	[0-3]   magic       0x55AA55AA (little-endian uint32)
//	[4-7]   length      payload length in bytes (little-endian uint32)
//	[8-11]  type        message type (little-endian uint32)
//	[12-15] type check  ^type & 0xFFFFFFFF (little-endian uint32)
type Header struct {
	Length uint32
	Type   MsgType
}

// TypeCheck returns the redundant integrity field for a message type.
func TypeCheck(t MsgType) uint32 {
	return ^uint32(t)
}

// ParseHeader parses and validates a 16-byte header. packetMax bounds the
// announced payload length; pass 0 to use DefaultPacketMax.
func ParseHeader(buf []byte, packetMax uint32) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("%w: have %d, need %d", ErrShortHeader, len(buf), HeaderSize)
	}
	if packetMax == 0 {
		packetMax = DefaultPacketMax
	}

	magic := binary.LittleEndian.Uint32(buf[0:4])
	if magic != Magic {
		return Header{}, fmt.Errorf("%w: 0x%08x", ErrBadMagic, magic)
	}

	length := binary.LittleEndian.Uint32(buf[4:8])
	rawType := binary.LittleEndian.Uint32(buf[8:12])
	check := binary.LittleEndian.Uint32(buf[12:16])

	if check != ^rawType {
		return Header{}, fmt.Errorf("%w: type 0x%08x, check 0x%08x", ErrBadTypeCheck, rawType, check)
	}
	if length > packetMax {
		return Header{}, fmt.Errorf("%w: %d > %d", ErrOversizedPayload, length, packetMax)
	}

	return Header{Length: length, Type: MsgType(rawType)}, nil
}

// EncodeHeader builds the 16-byte wire header for a message of the given
// type and payload length.
func EncodeHeader(t MsgType, length uint32) []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:8], length)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(t))
	binary.LittleEndian.PutUint32(buf[12:16], TypeCheck(t))
	return buf
}

// String implements fmt.Stringer for debugging.
func (h Header) String() string {
	return fmt.Sprintf("Header{type=%s, length=%d}", h.Type, h.Length)
}
