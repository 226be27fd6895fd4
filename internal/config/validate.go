package config

import "fmt"

// ConfigError reports a rejected configuration value. The engine keeps the
// prior configuration when Validate fails on apply.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

// Validate checks every field that the dongle or the engine would otherwise
// accept silently and misbehave on. Returns nil or a *ConfigError naming the
// first offending field.
func (c *Config) Validate() error {
	d := &c.Dongle

	if d.Width <= 0 || d.Width > 7680 {
		return &ConfigError{Field: "dongle.width", Reason: fmt.Sprintf("%d out of range 1..7680", d.Width)}
	}
	if d.Height <= 0 || d.Height > 7680 {
		return &ConfigError{Field: "dongle.height", Reason: fmt.Sprintf("%d out of range 1..7680", d.Height)}
	}
	if d.FPS <= 0 || d.FPS > 120 {
		return &ConfigError{Field: "dongle.fps", Reason: fmt.Sprintf("%d out of range 1..120", d.FPS)}
	}
	if d.DPI <= 0 {
		return &ConfigError{Field: "dongle.dpi", Reason: "must be positive"}
	}
	if d.PacketMax < 16 {
		return &ConfigError{Field: "dongle.packet_max", Reason: "smaller than a message header"}
	}
	if d.BoxName == "" {
		return &ConfigError{Field: "dongle.box_name", Reason: "must not be empty"}
	}
	if d.HandDrive != HandDriveLeft && d.HandDrive != HandDriveRight {
		return &ConfigError{Field: "dongle.hand_drive", Reason: fmt.Sprintf("unknown value %d", d.HandDrive)}
	}
	if d.WifiBand != WifiBand24GHz && d.WifiBand != WifiBand5GHz {
		return &ConfigError{Field: "dongle.wifi_band", Reason: fmt.Sprintf("%q is not %q or %q", d.WifiBand, WifiBand24GHz, WifiBand5GHz)}
	}
	if d.MicSource != MicSourceOS && d.MicSource != MicSourceBox {
		return &ConfigError{Field: "dongle.mic_source", Reason: fmt.Sprintf("%q is not %q or %q", d.MicSource, MicSourceOS, MicSourceBox)}
	}
	if d.MediaDelay < 0 {
		return &ConfigError{Field: "dongle.media_delay", Reason: "must not be negative"}
	}
	if d.CarPlayFrameInterval < 0 || d.AndroidAutoFrameInterval < 0 {
		return &ConfigError{Field: "dongle.frame_interval", Reason: "must not be negative"}
	}

	if c.Reconnect.Delay <= 0 {
		return &ConfigError{Field: "reconnect.delay", Reason: "must be positive"}
	}
	if c.Reconnect.MaxAttempts < 1 {
		return &ConfigError{Field: "reconnect.max_attempts", Reason: "must be at least 1"}
	}
	if c.Audio.BufferSeconds <= 0 {
		return &ConfigError{Field: "audio.buffer_seconds", Reason: "must be positive"}
	}
	if c.DecoderErrorDelay < 0 {
		return &ConfigError{Field: "decoder_error_delay", Reason: "must not be negative"}
	}

	return nil
}
