// Package carlink is the engine facade tying the lower layers together.
//
// A Node owns the connection state machine and one driver session at a
// time. Incoming messages route into the per-pairing stream structures (the
// audio ring buffer and the video access-unit assembler, both created on
// pairing and destroyed on unplug) and surface as typed events through a
// single callback. Imperative commands (touch, key, microphone audio) go
// down the driver's serialized write path.
//
// # Lifecycle
//
// Disconnected -> Initializing -> Opening -> AwaitingPhone -> Paired, with
// recovery split three ways: a missing device is the caller's problem, a failed
// open before any session is retried forever on a fixed delay, and a
// dropped established session takes the bounded Reconnecting path that
// terminates in Failed when attempts run out. Scheduled tasks (heartbeat in
// the driver, pairing nudge, keep-alive frame commands) are armed and
// cancelled by state transitions.
//
// The Status projection produces exactly the strings host surfaces expect:
// "Connecting...", "Connected - <PhoneType>", "Reconnecting...",
// "Failed: <reason>".
package carlink
