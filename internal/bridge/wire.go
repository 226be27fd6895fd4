package bridge

import (
	"encoding/base64"
	"encoding/json"

	"github.com/autokit/carlink/internal/carlink"
)

// Client -> server operation names.
const (
	OpTouch         = "touch"
	OpKey           = "key"
	OpVolume        = "volume"
	OpVideoSettings = "videoSettings"
	OpStatus        = "status"
)

// Command is the client -> server control message. Fields beyond Op are
// op-specific; unused ones stay at their zero value.
type Command struct {
	Op     string  `json:"op"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Action string  `json:"action,omitempty"`
	Name   string  `json:"name,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	DPI    int     `json:"dpi,omitempty"`
}

// CommandError reports a command the bridge could not dispatch.
type CommandError struct {
	Op     string
	Reason string
}

func (e *CommandError) Error() string {
	return "bridge: " + e.Op + ": " + e.Reason
}

// Envelope is the server -> client message frame.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type StatusPayload struct {
	Status string `json:"status"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type PhonePayload struct {
	PhoneType string `json:"phone_type"`
}

type VideoPayload struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Keyframe bool   `json:"keyframe"`
	FrameNum uint32 `json:"frame_num"`
	Data     string `json:"data"` // base64 Annex B access unit
}

type AudioPayload struct {
	Samples    int `json:"samples"`
	SampleRate int `json:"sample_rate"`
	Channels   int `json:"channels"`
}

type SongPayload struct {
	Title      string `json:"title"`
	Album      string `json:"album,omitempty"`
	PlayTimeMs int    `json:"play_time_ms,omitempty"`
	DurationMs int    `json:"duration_ms,omitempty"`
}

type ArtistPayload struct {
	Artist string `json:"artist"`
}

type NavigationPayload struct {
	CurrentRoad  string  `json:"current_road,omitempty"`
	NextRoad     string  `json:"next_road,omitempty"`
	Distance     float64 `json:"distance,omitempty"`
	DistanceUnit string  `json:"distance_unit,omitempty"`
	Maneuver     string  `json:"maneuver,omitempty"`
	ETA          string  `json:"eta,omitempty"`
}

type PhoneCallPayload struct {
	Status string `json:"status"`
	Caller string `json:"caller,omitempty"`
}

type AlbumArtPayload struct {
	Data string `json:"data"` // base64 image bytes
}

// encodeEvent projects an engine event onto the wire envelope. Events with
// no host-surface meaning return ok=false and are not forwarded.
func encodeEvent(e carlink.Event) ([]byte, bool) {
	var env Envelope
	switch ev := e.(type) {
	case carlink.StatusChanged:
		env = Envelope{Event: "statusChanged", Data: StatusPayload{Status: ev.Status}}
	case carlink.PhoneConnected:
		env = Envelope{Event: "phoneConnected", Data: PhonePayload{PhoneType: ev.PhoneType.String()}}
	case carlink.PhoneDisconnected:
		env = Envelope{Event: "phoneDisconnected"}
	case carlink.VideoFrame:
		env = Envelope{Event: "videoFrame", Data: VideoPayload{
			Width:    ev.Unit.Width,
			Height:   ev.Unit.Height,
			Keyframe: ev.Unit.Keyframe,
			FrameNum: ev.Unit.FrameNum,
			Data:     base64.StdEncoding.EncodeToString(ev.Unit.Data),
		}}
	case carlink.AudioReceived:
		env = Envelope{Event: "audioReceived", Data: AudioPayload{
			Samples:    ev.Samples,
			SampleRate: ev.SampleRate,
			Channels:   ev.Channels,
		}}
	case carlink.SongChanged:
		env = Envelope{Event: "songChanged", Data: SongPayload{
			Title:      ev.Title,
			Album:      ev.Album,
			PlayTimeMs: ev.PlayTimeMs,
			DurationMs: ev.DurationMs,
		}}
	case carlink.ArtistChanged:
		env = Envelope{Event: "artistChanged", Data: ArtistPayload{Artist: ev.Artist}}
	case carlink.NavigationChanged:
		env = Envelope{Event: "navigationChanged", Data: NavigationPayload{
			CurrentRoad:  ev.CurrentRoad,
			NextRoad:     ev.NextRoad,
			Distance:     ev.Distance,
			DistanceUnit: ev.DistanceUnit,
			Maneuver:     ev.Maneuver,
			ETA:          ev.ETA,
		}}
	case carlink.PhoneCall:
		env = Envelope{Event: "phoneCall", Data: PhoneCallPayload{Status: ev.Status, Caller: ev.Caller}}
	case carlink.AlbumArt:
		env = Envelope{Event: "albumArt", Data: AlbumArtPayload{
			Data: base64.StdEncoding.EncodeToString(ev.Data),
		}}
	default:
		return nil, false
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, false
	}
	return data, true
}

// mustEnvelope marshals a known-good envelope; the payload types above
// cannot fail to encode.
func mustEnvelope(event string, payload any) []byte {
	data, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		panic(err)
	}
	return data
}
