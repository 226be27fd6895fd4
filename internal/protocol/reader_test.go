package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestReaderNext(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(Encode(SendCommand{Value: CmdWifiConnected}))
	stream.Write(Encode(Heartbeat{}))

	r := NewReader(&stream, 0)

	msg, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	cmd, ok := msg.(*Command)
	if !ok || cmd.Value != CmdWifiConnected {
		t.Fatalf("got %T %v, want Command{wifiConnected}", msg, msg)
	}

	msg, err = r.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if _, ok := msg.(*HeartbeatAck); !ok {
		t.Fatalf("got %T, want HeartbeatAck", msg)
	}

	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF at end of stream, got %v", err)
	}
}

func TestReaderResyncAfterGarbage(t *testing.T) {
	var stream bytes.Buffer
	stream.Write([]byte{0x00, 0x11, 0x22, 0x33, 0x44}) // transport noise
	stream.Write(Encode(SendCommand{Value: CmdFrame}))

	r := NewReader(&stream, 0)

	msg, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	cmd, ok := msg.(*Command)
	if !ok || cmd.Value != CmdFrame {
		t.Fatalf("got %T %v, want Command{frame}", msg, msg)
	}
	if r.Discarded == 0 {
		t.Error("expected discarded bytes to be counted")
	}
}

func TestReaderDropsCorruptTypeCheck(t *testing.T) {
	var stream bytes.Buffer
	bad := buildHeader(Magic, 9999, uint32(MsgCommand), 0xFFFFFFFF)
	stream.Write(bad)
	stream.Write(Encode(SendCommand{Value: CmdHome}))

	r := NewReader(&stream, 0)

	// The corrupt header must be dropped without consuming the valid
	// message behind it as payload.
	msg, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	cmd, ok := msg.(*Command)
	if !ok || cmd.Value != CmdHome {
		t.Fatalf("got %T %v, want Command{home}", msg, msg)
	}
}

func TestReaderPartialDelivery(t *testing.T) {
	frame := Encode(SendCommand{Value: CmdPlay})

	// Deliver the frame one byte at a time.
	r := NewReader(&oneByteReader{data: frame}, 0)
	msg, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	cmd, ok := msg.(*Command)
	if !ok || cmd.Value != CmdPlay {
		t.Fatalf("got %T %v, want Command{play}", msg, msg)
	}
}

// oneByteReader yields one byte per Read call to simulate fragmented bulk
// transfers.
type oneByteReader struct {
	data []byte
}

func (s *oneByteReader) Read(p []byte) (int, error) {
	if len(s.data) == 0 {
		return 0, io.EOF
	}
	p[0] = s.data[0]
	s.data = s.data[1:]
	return 1, nil
}
