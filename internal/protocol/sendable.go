package protocol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// Sendable is an outgoing message. Encode produces the full wire frame
// (header + payload) from a Sendable; the catalog below is the single source
// of truth for every payload shape the host can emit.
type Sendable interface {
	SendType() MsgType
	SendPayload() []byte
}

// Encode serializes a sendable message into its wire frame.
func Encode(m Sendable) []byte {
	payload := m.SendPayload()
	frame := make([]byte, 0, HeaderSize+len(payload))
	frame = append(frame, EncodeHeader(m.SendType(), uint32(len(payload)))...)
	return append(frame, payload...)
}

// Heartbeat is the 2-second keep-alive. Empty payload.
type Heartbeat struct{}

func (Heartbeat) SendType() MsgType   { return MsgHeartBeat }
func (Heartbeat) SendPayload() []byte { return nil }

// CloseDongle disconnects the phone and shuts the dongle session down.
type CloseDongle struct{}

func (CloseDongle) SendType() MsgType   { return MsgCloseDongle }
func (CloseDongle) SendPayload() []byte { return nil }

// DisconnectPhone drops the phone; it may reconnect without reopening.
type DisconnectPhone struct{}

func (DisconnectPhone) SendType() MsgType   { return MsgDisconnectPhone }
func (DisconnectPhone) SendPayload() []byte { return nil }

// SendCommand carries a single command value.
type SendCommand struct {
	Value CommandValue
}

func (SendCommand) SendType() MsgType { return MsgCommand }

func (m SendCommand) SendPayload() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(m.Value))
	return buf
}

// SendOpen carries the session configuration that opens the mirrored stream.
type SendOpen struct {
	Width         uint32
	Height        uint32
	FPS           uint32
	Format        uint32
	PacketMax     uint32
	IBoxVersion   uint32
	PhoneWorkMode uint32
}

func (SendOpen) SendType() MsgType { return MsgOpen }

func (m SendOpen) SendPayload() []byte {
	buf := make([]byte, 28)
	binary.LittleEndian.PutUint32(buf[0:4], m.Width)
	binary.LittleEndian.PutUint32(buf[4:8], m.Height)
	binary.LittleEndian.PutUint32(buf[8:12], m.FPS)
	binary.LittleEndian.PutUint32(buf[12:16], m.Format)
	binary.LittleEndian.PutUint32(buf[16:20], m.PacketMax)
	binary.LittleEndian.PutUint32(buf[20:24], m.IBoxVersion)
	binary.LittleEndian.PutUint32(buf[24:28], m.PhoneWorkMode)
	return buf
}

// SendTouch is a single-touch event. X and Y are normalized to 0..1 and
// scaled to the dongle's fixed 0..10000 coordinate space on the wire.
type SendTouch struct {
	X      float64
	Y      float64
	Action TouchAction
}

func (SendTouch) SendType() MsgType { return MsgTouch }

func (m SendTouch) SendPayload() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(m.Action))
	binary.LittleEndian.PutUint32(buf[4:8], scaleCoord(m.X))
	binary.LittleEndian.PutUint32(buf[8:12], scaleCoord(m.Y))
	return buf
}

func scaleCoord(v float64) uint32 {
	scaled := int(10000 * v)
	if scaled < 0 {
		scaled = 0
	}
	if scaled > 10000 {
		scaled = 10000
	}
	return uint32(scaled)
}

// TouchItem is one finger of a multi-touch event.
type TouchItem struct {
	X      float32
	Y      float32
	Action MultiTouchAction
	ID     uint32
}

// SendMultiTouch carries up to the dongle's finger limit of TouchItems,
// 16 bytes each: f32 x, f32 y, u32 action, u32 id.
type SendMultiTouch struct {
	Touches []TouchItem
}

func (SendMultiTouch) SendType() MsgType { return MsgMultiTouch }

func (m SendMultiTouch) SendPayload() []byte {
	buf := make([]byte, 16*len(m.Touches))
	for i, t := range m.Touches {
		off := i * 16
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(t.X))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(t.Y))
		binary.LittleEndian.PutUint32(buf[off+8:], uint32(t.Action))
		binary.LittleEndian.PutUint32(buf[off+12:], t.ID)
	}
	return buf
}

// SendAudio carries upstream microphone PCM to the phone. The fixed prefix
// (decodeType=5, volume=0, audioType=3) matches what phones expect for mic
// input.
type SendAudio struct {
	Data []byte // S16LE PCM at 16 kHz mono
}

func (SendAudio) SendType() MsgType { return MsgAudioData }

func (m SendAudio) SendPayload() []byte {
	buf := make([]byte, 12+len(m.Data))
	binary.LittleEndian.PutUint32(buf[0:4], 5)
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(0))
	binary.LittleEndian.PutUint32(buf[8:12], 3)
	copy(buf[12:], m.Data)
	return buf
}

// SendFile writes a blob to a pseudo-path on the dongle:
// u32 name length, null-terminated name, u32 content length, content.
type SendFile struct {
	Name    string
	Content []byte
}

func (SendFile) SendType() MsgType { return MsgSendFile }

func (m SendFile) SendPayload() []byte {
	name := append([]byte(m.Name), 0)
	buf := make([]byte, 0, 8+len(name)+len(m.Content))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(name)))
	buf = append(buf, name...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(m.Content)))
	return append(buf, m.Content...)
}

// SendNumber writes a u32 value to a dongle pseudo-path.
func SendNumber(value uint32, file string) SendFile {
	content := make([]byte, 4)
	binary.LittleEndian.PutUint32(content, value)
	return SendFile{Name: file, Content: content}
}

// SendBoolean writes a boolean (as u32 0/1) to a dongle pseudo-path.
func SendBoolean(value bool, file string) SendFile {
	v := uint32(0)
	if value {
		v = 1
	}
	return SendNumber(v, file)
}

// maxStringFileLen bounds string settings; the dongle truncates beyond 16.
const maxStringFileLen = 16

// SendString writes an ASCII string to a dongle pseudo-path.
func SendString(value string, file string) SendFile {
	if len(value) > maxStringFileLen {
		value = value[:maxStringFileLen]
	}
	return SendFile{Name: file, Content: []byte(value)}
}

// SendBoxSettings carries the JSON settings blob the dongle forwards to
// AndroidAuto sessions.
type SendBoxSettings struct {
	MediaDelay int
	SyncTime   int64 // unix seconds; zero means "now"
	Width      uint32
	Height     uint32
}

func (SendBoxSettings) SendType() MsgType { return MsgBoxSettings }

func (m SendBoxSettings) SendPayload() []byte {
	syncTime := m.SyncTime
	if syncTime == 0 {
		syncTime = time.Now().Unix()
	}
	settings := map[string]any{
		"mediaDelay":       m.MediaDelay,
		"syncTime":         syncTime,
		"androidAutoSizeW": m.Width,
		"androidAutoSizeH": m.Height,
	}
	buf, err := json.Marshal(settings)
	if err != nil {
		// map[string]any of scalars cannot fail to marshal
		return nil
	}
	return buf
}

// SendLogoType selects the branding glyph shown on the phone.
type SendLogoType struct {
	Logo LogoType
}

func (SendLogoType) SendType() MsgType { return MsgLogoType }

func (m SendLogoType) SendPayload() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(m.Logo))
	return buf
}

// SendIconConfig builds the airplay.conf key=value file that names the
// host's icon and label on the phone's CarPlay screen.
func SendIconConfig(label string) SendFile {
	values := map[string]string{
		"oemIconVisible": "1",
		"name":           "AutoBox",
		"model":          "Magic-Car-Link-1.00",
		"oemIconPath":    FileOEMIcon,
	}
	if label != "" {
		values["oemIconLabel"] = label
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var content []byte
	for _, k := range keys {
		content = append(content, fmt.Sprintf("%s = %s\n", k, values[k])...)
	}
	return SendFile{Name: FileAirplayConfig, Content: content}
}
