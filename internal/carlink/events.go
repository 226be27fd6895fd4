package carlink

import (
	"github.com/autokit/carlink/internal/protocol"
	"github.com/autokit/carlink/internal/video"
)

// Event is a typed notification from the Node. Handlers run on engine
// goroutines and must not block.
type Event interface {
	eventName() string
}

// StatusChanged fires on every state transition.
type StatusChanged struct {
	State  State
	Status string
}

func (StatusChanged) eventName() string { return "statusChanged" }

// PhoneConnected fires when a phone completes pairing with the dongle.
type PhoneConnected struct {
	PhoneType protocol.PhoneType
}

func (PhoneConnected) eventName() string { return "phoneConnected" }

// PhoneDisconnected fires when the phone session ends while the dongle
// stays attached.
type PhoneDisconnected struct{}

func (PhoneDisconnected) eventName() string { return "phoneDisconnected" }

// VideoFrame carries one complete access unit for the external decoder.
type VideoFrame struct {
	Unit video.AccessUnit
}

func (VideoFrame) eventName() string { return "videoFrameReceived" }

// AudioReceived fires when PCM samples land in the ring buffer. The
// playback side reads the samples from the ring, not from the event.
type AudioReceived struct {
	Samples    int
	SampleRate int
	Channels   int
}

func (AudioReceived) eventName() string { return "audioReceived" }

// SongChanged fires when now-playing metadata names a new track.
type SongChanged struct {
	Title      string
	Album      string
	PlayTimeMs int
	DurationMs int
}

func (SongChanged) eventName() string { return "songChanged" }

// ArtistChanged fires alongside SongChanged when the artist differs.
type ArtistChanged struct {
	Artist string
}

func (ArtistChanged) eventName() string { return "artistChanged" }

// NavigationChanged carries turn-by-turn metadata from the phone.
type NavigationChanged struct {
	CurrentRoad  string
	NextRoad     string
	Distance     float64
	DistanceUnit string
	Maneuver     string
	ETA          string
}

func (NavigationChanged) eventName() string { return "navigationChanged" }

// PhoneCall carries call status metadata.
type PhoneCall struct {
	Status string
	Caller string
}

func (PhoneCall) eventName() string { return "phoneCall" }

// AlbumArt carries raw album cover bytes.
type AlbumArt struct {
	Data []byte
}

func (AlbumArt) eventName() string { return "albumArt" }

// DongleCommand surfaces command values the engine does not consume itself
// (host UI requests, config panel toggles).
type DongleCommand struct {
	Value protocol.CommandValue
}

func (DongleCommand) eventName() string { return "command" }

// DeviceInfo surfaces the dongle's identity strings (MAC addresses, device
// names, firmware version).
type DeviceInfo struct {
	Type  protocol.MsgType
	Value string
}

func (DeviceInfo) eventName() string { return "deviceInfo" }
