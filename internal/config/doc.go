// Package config provides user configuration management for the Carlink project.
//
// This package manages a YAML-based configuration file holding the video,
// dongle, and recovery settings the engine sends to the adapter on every
// connection. Fields absent from the file keep their built-in defaults, so a
// minimal file overriding only width/height is valid.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/carlink/config.yaml or $HOME/.config/carlink/config.yaml
//   - macOS: $HOME/.config/carlink/config.yaml
//   - Windows: %LOCALAPPDATA%\carlink\config.yaml
//
// # Apply Semantics
//
// Dongle settings are immutable for the lifetime of an open session. Saving
// a new configuration takes effect on the next connection cycle; Validate
// rejects bad values before anything reaches the device, and a rejected
// configuration leaves the previous one in force.
//
// # Thread Safety
//
// The global config uses sync.Once for safe initialization across
// goroutines. File operations are protected by a mutex to ensure atomic
// writes.
package config
