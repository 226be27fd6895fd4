// Package protocol implements the CarPlay/AndroidAuto dongle binary protocol.
//
// This package handles parsing, validation, and construction of the framed
// binary messages exchanged with the USB dongle. It is the single source of
// truth for the shape-to-type mapping used by both the encode and decode
// paths, which guarantees round-trip symmetry.
//
// # Wire Format
//
// Every message starts with a 16-byte header of little-endian uint32 fields:
//   - Magic: 0x55AA55AA
//   - Payload length
//   - Message type
//   - Type check: bitwise NOT of the message type
//
// The payload layout depends on the message type: fixed numeric fields,
// null-padded strings, length-prefixed file blobs, raw PCM/H.264 data, or
// UTF-8 JSON (media metadata and box settings).
//
// # Decoding
//
// Reader consumes a byte stream from the transport, buffering partial chunks
// and resynchronizing on corruption:
//
//	r := protocol.NewReader(transport, packetMax)
//	for {
//	    msg, err := r.Next()
//	    ...
//	    switch m := msg.(type) {
//	    case *protocol.VideoData:
//	        ...
//	    }
//	}
//
// A header with bad magic is resynchronized by discarding bytes and
// rescanning; a bad type check or oversized length drops the frame. Neither
// tears the connection down. JSON payloads are parsed leniently: a garbled
// metadata blob yields an empty map, never an error.
//
// # Encoding
//
// Outgoing messages implement Sendable and serialize with Encode:
//
//	frame := protocol.Encode(protocol.SendTouch{X: 0.5, Y: 0.5, Action: protocol.TouchDown})
//	_, err := transport.Write(frame)
//
// # Error Handling
//
// The sentinel errors ErrBadMagic, ErrBadTypeCheck and ErrOversizedPayload
// classify header corruption; truncated typed payloads produce wrapped
// descriptive errors. All are drop-and-continue conditions for the caller.
//
// # Thread Safety
//
// Encode/decode functions are stateless and safe for concurrent use. Reader
// is single-consumer: exactly one goroutine may call Next.
package protocol
