package protocol

import (
	"encoding/binary"
	"errors"
	"testing"
)

func buildHeader(magic uint32, length uint32, msgType uint32, check uint32) []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], magic)
	binary.LittleEndian.PutUint32(buf[4:8], length)
	binary.LittleEndian.PutUint32(buf[8:12], msgType)
	binary.LittleEndian.PutUint32(buf[12:16], check)
	return buf
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name    string
		buf     []byte
		wantErr error
		verify  func(t *testing.T, h Header)
	}{
		{
			name: "valid video header",
			buf:  buildHeader(Magic, 1024, uint32(MsgVideoData), ^uint32(MsgVideoData)),
			verify: func(t *testing.T, h Header) {
				if h.Type != MsgVideoData {
					t.Errorf("type = %s, want VideoData", h.Type)
				}
				if h.Length != 1024 {
					t.Errorf("length = %d, want 1024", h.Length)
				}
			},
		},
		{
			name: "valid zero-length heartbeat",
			buf:  buildHeader(Magic, 0, uint32(MsgHeartBeat), ^uint32(MsgHeartBeat)),
			verify: func(t *testing.T, h Header) {
				if h.Type != MsgHeartBeat {
					t.Errorf("type = %s, want HeartBeat", h.Type)
				}
			},
		},
		{
			name:    "short buffer",
			buf:     make([]byte, 15),
			wantErr: ErrShortHeader,
		},
		{
			name:    "bad magic",
			buf:     buildHeader(0xDEADBEEF, 0, uint32(MsgCommand), ^uint32(MsgCommand)),
			wantErr: ErrBadMagic,
		},
		{
			name:    "bad type check",
			buf:     buildHeader(Magic, 0, uint32(MsgCommand), 0x12345678),
			wantErr: ErrBadTypeCheck,
		},
		{
			name:    "type check of a different type",
			buf:     buildHeader(Magic, 0, uint32(MsgCommand), ^uint32(MsgTouch)),
			wantErr: ErrBadTypeCheck,
		},
		{
			name:    "oversized payload",
			buf:     buildHeader(Magic, DefaultPacketMax+1, uint32(MsgVideoData), ^uint32(MsgVideoData)),
			wantErr: ErrOversizedPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseHeader(tt.buf, 0)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseHeader() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHeader() unexpected error: %v", err)
			}
			if tt.verify != nil {
				tt.verify(t, h)
			}
		})
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	// Every catalog type must survive encode -> parse exactly.
	for msgType := range msgTypeNames {
		buf := EncodeHeader(msgType, 42)
		h, err := ParseHeader(buf, 0)
		if err != nil {
			t.Errorf("round trip %s: %v", msgType, err)
			continue
		}
		if h.Type != msgType {
			t.Errorf("round trip type = %s, want %s", h.Type, msgType)
		}
		if h.Length != 42 {
			t.Errorf("round trip length = %d, want 42", h.Length)
		}
	}
}

func TestParseHeaderCustomPacketMax(t *testing.T) {
	buf := buildHeader(Magic, 2048, uint32(MsgVideoData), ^uint32(MsgVideoData))

	if _, err := ParseHeader(buf, 4096); err != nil {
		t.Errorf("length within custom max rejected: %v", err)
	}
	if _, err := ParseHeader(buf, 1024); !errors.Is(err, ErrOversizedPayload) {
		t.Errorf("length beyond custom max accepted, err = %v", err)
	}
}

func TestTypeCheck(t *testing.T) {
	if got := TypeCheck(MsgHeartBeat); got != ^uint32(0xAA) {
		t.Errorf("TypeCheck(HeartBeat) = 0x%08x, want 0x%08x", got, ^uint32(0xAA))
	}
}
