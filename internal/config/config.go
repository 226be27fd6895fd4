package config

// HandDrive selects which side of the car the wheel is on. The phone uses
// it to mirror UI affordances.
type HandDrive int

const (
	HandDriveLeft  HandDrive = 0
	HandDriveRight HandDrive = 1
)

// WifiBand values accepted by the dongle.
const (
	WifiBand24GHz = "2.4ghz"
	WifiBand5GHz  = "5ghz"
)

// MicSource values: "os" captures on the host, "box" uses the dongle's own
// microphone input.
const (
	MicSourceOS  = "os"
	MicSourceBox = "box"
)

// Dongle holds the session parameters sent to the adapter during the open
// sequence. Immutable once a session is open; changing any field requires a
// reconnect cycle to take effect.
type Dongle struct {
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	FPS           int    `yaml:"fps"`
	DPI           int    `yaml:"dpi"`
	Format        int    `yaml:"format"`
	IBoxVersion   int    `yaml:"ibox_version"`
	PhoneWorkMode int    `yaml:"phone_work_mode"`
	PacketMax     int    `yaml:"packet_max"`
	BoxName       string `yaml:"box_name"`

	NightMode       bool      `yaml:"night_mode"`
	HandDrive       HandDrive `yaml:"hand_drive"`
	MediaDelay      int       `yaml:"media_delay"`    // milliseconds
	AudioTransfer   bool      `yaml:"audio_transfer"` // dongle-side audio routing
	WifiBand        string    `yaml:"wifi_band"`      // "2.4ghz" or "5ghz"
	MicSource       string    `yaml:"mic_source"`     // "box" or "os"
	AndroidWorkMode *bool     `yaml:"android_work_mode,omitempty"`

	// Keep-alive frame command intervals in milliseconds, per phone kind.
	// Zero disables the timer for that kind.
	CarPlayFrameInterval     int `yaml:"carplay_frame_interval"`
	AndroidAutoFrameInterval int `yaml:"androidauto_frame_interval"`
}

// Reconnect bounds the recovery loop after an established session drops.
type Reconnect struct {
	Delay       int `yaml:"delay"`        // milliseconds between attempts
	MaxAttempts int `yaml:"max_attempts"` // exhaustion is terminal
}

// Audio sizes the playback ring buffer.
type Audio struct {
	BufferSeconds int `yaml:"buffer_seconds"`
}

// Config is the complete on-disk configuration.
type Config struct {
	Version           int       `yaml:"version"`
	Dongle            Dongle    `yaml:"dongle"`
	Reconnect         Reconnect `yaml:"reconnect"`
	Audio             Audio     `yaml:"audio"`
	DecoderErrorDelay int       `yaml:"decoder_error_delay"` // milliseconds
	BridgeAddr        string    `yaml:"bridge_addr,omitempty"`
}

// Default returns a Config populated with the values known to work with
// stock CPC200-series adapters.
func Default() *Config {
	return &Config{
		Version: 1,
		Dongle: Dongle{
			Width:         800,
			Height:        640,
			FPS:           30,
			DPI:           160,
			Format:        5,
			IBoxVersion:   2,
			PhoneWorkMode: 2,
			PacketMax:     49152,
			BoxName:       "CarLink",
			NightMode:     false,
			HandDrive:     HandDriveLeft,
			MediaDelay:    300,
			AudioTransfer: false,
			WifiBand:      WifiBand5GHz,
			MicSource:     MicSourceOS,

			CarPlayFrameInterval:     5000,
			AndroidAutoFrameInterval: 0,
		},
		Reconnect: Reconnect{
			Delay:       5000,
			MaxAttempts: 5,
		},
		Audio: Audio{
			BufferSeconds: 20,
		},
		DecoderErrorDelay: 15000,
		BridgeAddr:        "127.0.0.1:9080",
	}
}
