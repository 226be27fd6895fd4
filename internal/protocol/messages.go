package protocol

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrTruncatedPayload marks a well-framed message whose payload is shorter
// than its type's fixed shape. The stream position is intact after it; the
// caller drops the message and reads on.
var ErrTruncatedPayload = errors.New("protocol: truncated payload")

// Message is a decoded incoming message. The concrete type is determined by
// the header's message type; unrecognized types decode to *Unknown.
type Message interface {
	MsgType() MsgType
}

// Opened acknowledges the Open message and echoes the negotiated session
// parameters back to the host.
type Opened struct {
	Width       uint32
	Height      uint32
	FPS         uint32
	Format      uint32
	PacketMax   uint32
	IBoxVersion uint32
	PhoneMode   uint32
}

func (*Opened) MsgType() MsgType { return MsgOpen }

func (m *Opened) String() string {
	return fmt.Sprintf("Opened{%dx%d@%d, format=%d, packetMax=%d}",
		m.Width, m.Height, m.FPS, m.Format, m.PacketMax)
}

// Plugged reports that a phone completed the WiFi/Bluetooth handshake with
// the dongle. The second field is only present on newer firmware.
type Plugged struct {
	PhoneType PhoneType
	Wifi      bool
}

func (*Plugged) MsgType() MsgType { return MsgPlugged }

// Unplugged reports that the phone session ended. No payload.
type Unplugged struct{}

func (*Unplugged) MsgType() MsgType { return MsgUnplugged }

// Phase reports the dongle's internal connection phase.
type Phase struct {
	Phase uint32
}

func (*Phase) MsgType() MsgType { return MsgPhase }

// Command carries a single command value from the dongle.
type Command struct {
	Value CommandValue
}

func (*Command) MsgType() MsgType { return MsgCommand }

// ManufacturerInfo carries two opaque firmware identification words.
type ManufacturerInfo struct {
	A uint32
	B uint32
}

func (*ManufacturerInfo) MsgType() MsgType { return MsgManufacturerInfo }

// AudioData is the tri-shape audio payload. After the fixed 12-byte prefix
// (decode type, volume, audio type) the remainder is either a 1-byte command,
// a 4-byte volume duration, or signed 16-bit little-endian PCM samples.
type AudioData struct {
	DecodeType uint32
	Volume     float32
	AudioType  uint32

	// Exactly one of the following is meaningful per message.
	Command           AudioCommand // zero when the payload carries samples
	VolumeDuration    float32
	HasVolumeDuration bool
	Data              []byte // raw S16LE PCM, empty for command/duration shapes
}

func (*AudioData) MsgType() MsgType { return MsgAudioData }

// Format resolves the PCM parameters for this message's decode type.
func (m *AudioData) Format() (AudioFormat, bool) {
	return AudioFormatFor(m.DecodeType)
}

// Samples decodes the PCM payload into int16 samples.
func (m *AudioData) Samples() []int16 {
	n := len(m.Data) / 2
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(m.Data[i*2:]))
	}
	return samples
}

// VideoData is one fragment of an H.264 access unit. FrameNum increments
// monotonically per chunk; gaps indicate dropped USB transfers.
type VideoData struct {
	Width    uint32
	Height   uint32
	Flags    uint32
	Length   uint32
	FrameNum uint32
	Data     []byte
}

func (*VideoData) MsgType() MsgType { return MsgVideoData }

// MediaData carries now-playing/navigation metadata (JSON) or album art.
type MediaData struct {
	Type     MediaType
	Media    map[string]any // populated for MediaTypeData
	AlbumArt []byte         // populated for MediaTypeAlbumCover
}

func (*MediaData) MsgType() MsgType { return MsgMediaData }

// BoxInfo carries the dongle's settings blob as lenient JSON.
type BoxInfo struct {
	Settings map[string]any
}

func (*BoxInfo) MsgType() MsgType { return MsgBoxSettings }

// StringInfo covers the family of null-padded ASCII payloads (Bluetooth
// address/PIN/device name, WiFi name, MAC addresses, software version,
// HiCar link, paired list). The header type distinguishes them.
type StringInfo struct {
	Type  MsgType
	Value string
}

func (m *StringInfo) MsgType() MsgType { return m.Type }

// Unknown preserves the raw payload of message types the catalog does not
// model. Dropped upstream after debug logging.
type Unknown struct {
	Type MsgType
	Data []byte
}

func (m *Unknown) MsgType() MsgType { return m.Type }

// HeartbeatAck is the dongle's reply to an outgoing heartbeat.
type HeartbeatAck struct{}

func (*HeartbeatAck) MsgType() MsgType { return MsgHeartBeat }

// stringPayloadTypes enumerates the types decoded as null-padded strings.
var stringPayloadTypes = map[MsgType]bool{
	MsgBluetoothAddress:    true,
	MsgBluetoothPIN:        true,
	MsgBluetoothDeviceName: true,
	MsgWifiDeviceName:      true,
	MsgBluetoothPairedList: true,
	MsgHiCarLink:           true,
	MsgWifiMacAddress:      true,
	MsgBluetoothMacAddress: true,
	MsgEthernetMacAddress:  true,
	MsgSoftwareVersion:     true,
}

// DecodeMessage decodes a payload into its typed message according to the
// catalog. The error return is ErrTruncatedPayload-style detail for shapes
// whose fixed prefix does not fit; JSON payloads are decoded leniently and
// yield a message with empty fields rather than an error.
func DecodeMessage(h Header, payload []byte) (Message, error) {
	switch h.Type {
	case MsgUnplugged:
		return &Unplugged{}, nil

	case MsgHeartBeat:
		return &HeartbeatAck{}, nil

	case MsgOpen:
		if len(payload) < 28 {
			return nil, truncated(h.Type, len(payload), 28)
		}
		return &Opened{
			Width:       binary.LittleEndian.Uint32(payload[0:4]),
			Height:      binary.LittleEndian.Uint32(payload[4:8]),
			FPS:         binary.LittleEndian.Uint32(payload[8:12]),
			Format:      binary.LittleEndian.Uint32(payload[12:16]),
			PacketMax:   binary.LittleEndian.Uint32(payload[16:20]),
			IBoxVersion: binary.LittleEndian.Uint32(payload[20:24]),
			PhoneMode:   binary.LittleEndian.Uint32(payload[24:28]),
		}, nil

	case MsgPlugged:
		if len(payload) < 4 {
			return nil, truncated(h.Type, len(payload), 4)
		}
		m := &Plugged{PhoneType: PhoneType(binary.LittleEndian.Uint32(payload[0:4]))}
		if len(payload) >= 8 {
			m.Wifi = binary.LittleEndian.Uint32(payload[4:8]) != 0
		}
		return m, nil

	case MsgPhase:
		if len(payload) < 4 {
			return nil, truncated(h.Type, len(payload), 4)
		}
		return &Phase{Phase: binary.LittleEndian.Uint32(payload[0:4])}, nil

	case MsgCommand:
		if len(payload) < 4 {
			return nil, truncated(h.Type, len(payload), 4)
		}
		return &Command{Value: CommandValue(binary.LittleEndian.Uint32(payload[0:4]))}, nil

	case MsgManufacturerInfo:
		if len(payload) < 8 {
			return nil, truncated(h.Type, len(payload), 8)
		}
		return &ManufacturerInfo{
			A: binary.LittleEndian.Uint32(payload[0:4]),
			B: binary.LittleEndian.Uint32(payload[4:8]),
		}, nil

	case MsgAudioData:
		return decodeAudioData(payload)

	case MsgVideoData:
		return decodeVideoData(payload)

	case MsgMediaData:
		return decodeMediaData(payload)

	case MsgBoxSettings:
		m := &BoxInfo{Settings: map[string]any{}}
		// Lenient JSON: a malformed blob yields empty settings.
		_ = json.Unmarshal(bytes.TrimRight(payload, "\x00"), &m.Settings)
		return m, nil

	default:
		if stringPayloadTypes[h.Type] {
			return &StringInfo{Type: h.Type, Value: decodeString(payload)}, nil
		}
		return &Unknown{Type: h.Type, Data: payload}, nil
	}
}

func decodeAudioData(payload []byte) (Message, error) {
	if len(payload) < 12 {
		return nil, truncated(MsgAudioData, len(payload), 12)
	}
	m := &AudioData{
		DecodeType: binary.LittleEndian.Uint32(payload[0:4]),
		Volume:     math.Float32frombits(binary.LittleEndian.Uint32(payload[4:8])),
		AudioType:  binary.LittleEndian.Uint32(payload[8:12]),
	}
	switch rest := payload[12:]; len(rest) {
	case 0:
		// Bare audio header, nothing to route.
	case 1:
		m.Command = AudioCommand(rest[0])
	case 4:
		m.VolumeDuration = math.Float32frombits(binary.LittleEndian.Uint32(rest))
		m.HasVolumeDuration = true
	default:
		m.Data = rest
	}
	return m, nil
}

func decodeVideoData(payload []byte) (Message, error) {
	if len(payload) < 20 {
		return nil, truncated(MsgVideoData, len(payload), 20)
	}
	return &VideoData{
		Width:    binary.LittleEndian.Uint32(payload[0:4]),
		Height:   binary.LittleEndian.Uint32(payload[4:8]),
		Flags:    binary.LittleEndian.Uint32(payload[8:12]),
		Length:   binary.LittleEndian.Uint32(payload[12:16]),
		FrameNum: binary.LittleEndian.Uint32(payload[16:20]),
		Data:     payload[20:],
	}, nil
}

func decodeMediaData(payload []byte) (Message, error) {
	if len(payload) < 4 {
		return nil, truncated(MsgMediaData, len(payload), 4)
	}
	m := &MediaData{Type: MediaType(binary.LittleEndian.Uint32(payload[0:4]))}
	body := payload[4:]
	switch m.Type {
	case MediaTypeAlbumCover:
		m.AlbumArt = body
	case MediaTypeData:
		m.Media = map[string]any{}
		// Lenient JSON: the blob is sometimes null-terminated and
		// occasionally garbled mid-stream. A parse failure drops the
		// metadata, not the connection.
		_ = json.Unmarshal(bytes.TrimRight(body, "\x00"), &m.Media)
	}
	return m, nil
}

// decodeString trims null padding from ASCII/UTF-8 string payloads.
func decodeString(payload []byte) string {
	return string(bytes.TrimRight(payload, "\x00"))
}

func truncated(t MsgType, have, want int) error {
	return fmt.Errorf("%w: %s: have %d, need %d", ErrTruncatedPayload, t, have, want)
}
