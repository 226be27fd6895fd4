// Package audio provides the real-time PCM ring buffer between the dongle
// read loop and the host's playback thread.
//
// The ring holds a fixed window (default 20 seconds) of signed 16-bit PCM.
// Writes never block: when the buffer is full, the oldest unread samples are
// overwritten so playback latency stays bounded no matter how far the
// consumer lags. Reads never block either and return whatever is available.
//
// A ring is created when a phone session pairs (sized from the negotiated
// decode type) and destroyed on disconnect.
package audio
