// Package driver runs one open session with the adapter.
//
// A Driver is handed an already-open Transport and owns it until Close: it
// sends the device init sequence, runs a blocking read loop that decodes
// and dispatches incoming messages, keeps the session alive with a 2 second
// heartbeat, and serializes all writes so concurrent senders never
// interleave bytes mid-message.
//
// The driver is deliberately stateless about the connection lifecycle. It
// reports a dead session exactly once through the failure callback and
// leaves the reconnect decision to its owner. Malformed messages are
// dropped and counted; only a run of consecutive failures or a transport
// error kills the session.
package driver
