package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// Reader decodes a stream of framed messages from a transport. The transport
// may deliver partial chunks; the Reader buffers internally and only
// interprets payload bytes once a full, validated header is available.
//
// Recovery policy:
//   - bad magic: discard one byte and rescan for the next header boundary
//   - bad type check: the length field is untrustworthy too, so the 16
//     header bytes are discarded and scanning resumes
//   - oversized length: same as bad type check
//
// None of these tear the stream down; only transport I/O errors do.
type Reader struct {
	br        *bufio.Reader
	packetMax uint32

	// Discarded counts resync bytes dropped since the last valid message,
	// reset on each successful decode. Exposed for diagnostics.
	Discarded int
}

// NewReader wraps a transport stream. packetMax bounds announced payload
// lengths; pass 0 for DefaultPacketMax.
func NewReader(r io.Reader, packetMax uint32) *Reader {
	if packetMax == 0 {
		packetMax = DefaultPacketMax
	}
	return &Reader{
		br:        bufio.NewReaderSize(r, HeaderSize+int(packetMax)),
		packetMax: packetMax,
	}
}

// Next blocks until a complete message is available and decodes it.
// Malformed headers are recovered internally per the resync policy; a
// non-nil error therefore always comes from the underlying transport or
// from a truncated typed payload (which the caller should drop and log).
func (r *Reader) Next() (Message, error) {
	for {
		h, err := r.nextHeader()
		if err != nil {
			return nil, err
		}

		payload := make([]byte, h.Length)
		if _, err := io.ReadFull(r.br, payload); err != nil {
			return nil, fmt.Errorf("protocol: reading %d payload bytes for %s: %w", h.Length, h.Type, err)
		}

		msg, err := DecodeMessage(h, payload)
		if err != nil {
			// Shape error in an otherwise well-framed message: the
			// stream position is intact, so surface it for logging
			// and let the caller continue with the next frame.
			return nil, err
		}
		r.Discarded = 0
		return msg, nil
	}
}

// nextHeader scans the stream for the next valid header, dropping bytes per
// the resync policy.
func (r *Reader) nextHeader() (Header, error) {
	var buf [HeaderSize]byte
	for {
		if _, err := io.ReadFull(r.br, buf[:]); err != nil {
			return Header{}, fmt.Errorf("protocol: reading header: %w", err)
		}

		h, err := ParseHeader(buf[:], r.packetMax)
		if err == nil {
			return h, nil
		}

		if errors.Is(err, ErrBadMagic) {
			// Slide the window one byte and rescan.
			copy(buf[:], buf[1:])
			if _, err := io.ReadFull(r.br, buf[HeaderSize-1:]); err != nil {
				return Header{}, fmt.Errorf("protocol: resyncing: %w", err)
			}
			r.Discarded++
			for {
				h, perr := ParseHeader(buf[:], r.packetMax)
				if perr == nil {
					return h, nil
				}
				if !errors.Is(perr, ErrBadMagic) {
					// Found magic but header is corrupt;
					// drop it and scan fresh.
					r.Discarded += HeaderSize
					break
				}
				copy(buf[:], buf[1:])
				if _, err := io.ReadFull(r.br, buf[HeaderSize-1:]); err != nil {
					return Header{}, fmt.Errorf("protocol: resyncing: %w", err)
				}
				r.Discarded++
			}
			continue
		}

		// Valid magic, corrupt header fields: discard the header and
		// rescan from the next byte.
		r.Discarded += HeaderSize
	}
}
