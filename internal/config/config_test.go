package config

import (
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "carlink") {
		t.Errorf("GetConfigDir() = %v, should contain 'carlink'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Version != 1 {
		t.Errorf("Default().Version = %v, want 1", cfg.Version)
	}
	if cfg.Dongle.Width != 800 || cfg.Dongle.Height != 640 {
		t.Errorf("Default() resolution = %dx%d, want 800x640", cfg.Dongle.Width, cfg.Dongle.Height)
	}
	if cfg.Dongle.PacketMax != 49152 {
		t.Errorf("Default().Dongle.PacketMax = %v, want 49152", cfg.Dongle.PacketMax)
	}
	if cfg.Dongle.CarPlayFrameInterval != 5000 {
		t.Errorf("Default().Dongle.CarPlayFrameInterval = %v, want 5000", cfg.Dongle.CarPlayFrameInterval)
	}
	if cfg.Dongle.AndroidAutoFrameInterval != 0 {
		t.Errorf("Default().Dongle.AndroidAutoFrameInterval = %v, want 0", cfg.Dongle.AndroidAutoFrameInterval)
	}
	if cfg.Reconnect.MaxAttempts != 5 {
		t.Errorf("Default().Reconnect.MaxAttempts = %v, want 5", cfg.Reconnect.MaxAttempts)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() should validate, got: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:   "defaults pass",
			mutate: func(c *Config) {},
		},
		{
			name:      "zero width",
			mutate:    func(c *Config) { c.Dongle.Width = 0 },
			wantField: "dongle.width",
		},
		{
			name:      "negative height",
			mutate:    func(c *Config) { c.Dongle.Height = -1 },
			wantField: "dongle.height",
		},
		{
			name:      "absurd fps",
			mutate:    func(c *Config) { c.Dongle.FPS = 500 },
			wantField: "dongle.fps",
		},
		{
			name:      "packet max below header size",
			mutate:    func(c *Config) { c.Dongle.PacketMax = 8 },
			wantField: "dongle.packet_max",
		},
		{
			name:      "empty box name",
			mutate:    func(c *Config) { c.Dongle.BoxName = "" },
			wantField: "dongle.box_name",
		},
		{
			name:      "unknown wifi band",
			mutate:    func(c *Config) { c.Dongle.WifiBand = "6ghz" },
			wantField: "dongle.wifi_band",
		},
		{
			name:      "unknown mic source",
			mutate:    func(c *Config) { c.Dongle.MicSource = "usb" },
			wantField: "dongle.mic_source",
		},
		{
			name:      "zero reconnect attempts",
			mutate:    func(c *Config) { c.Reconnect.MaxAttempts = 0 },
			wantField: "reconnect.max_attempts",
		},
		{
			name:      "zero audio buffer",
			mutate:    func(c *Config) { c.Audio.BufferSeconds = 0 },
			wantField: "audio.buffer_seconds",
		},
		{
			name:      "negative decoder delay",
			mutate:    func(c *Config) { c.DecoderErrorDelay = -1 },
			wantField: "decoder_error_delay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("ConfigError.Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("partial file keeps defaults", func(t *testing.T) {
		cfg, err := Parse([]byte("version: 1\ndongle:\n  width: 1280\n  height: 720\n"))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if cfg.Dongle.Width != 1280 || cfg.Dongle.Height != 720 {
			t.Errorf("resolution = %dx%d, want 1280x720", cfg.Dongle.Width, cfg.Dongle.Height)
		}
		if cfg.Dongle.FPS != 30 {
			t.Errorf("FPS = %v, want default 30", cfg.Dongle.FPS)
		}
		if cfg.Dongle.BoxName != "CarLink" {
			t.Errorf("BoxName = %q, want default %q", cfg.Dongle.BoxName, "CarLink")
		}
	})

	t.Run("unsupported version rejected", func(t *testing.T) {
		if _, err := Parse([]byte("version: 2\n")); err == nil {
			t.Error("Parse() should reject version 2")
		}
	})

	t.Run("invalid value rejected", func(t *testing.T) {
		_, err := Parse([]byte("version: 1\ndongle:\n  width: 0\n"))
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("Parse() error = %v, want *ConfigError", err)
		}
	})

	t.Run("malformed yaml rejected", func(t *testing.T) {
		if _, err := Parse([]byte("\tversion: {")); err == nil {
			t.Error("Parse() should reject malformed YAML")
		}
	})
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Dongle.Width = 1920
	cfg.Dongle.Height = 1080
	cfg.Dongle.NightMode = true

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal error = %v", err)
	}
	data = append([]byte("# Carlink Configuration File\n\n"), data...)

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parsed.Dongle.Width != 1920 || parsed.Dongle.Height != 1080 {
		t.Errorf("resolution = %dx%d, want 1920x1080", parsed.Dongle.Width, parsed.Dongle.Height)
	}
	if !parsed.Dongle.NightMode {
		t.Error("NightMode should survive the round trip")
	}
}
