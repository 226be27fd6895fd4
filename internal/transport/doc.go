// Package transport owns the byte pipe between the engine and the adapter
// hardware.
//
// The Transport interface hides the USB mechanics from everything above it:
// the driver sees an io.ReadWriteCloser and nothing else, which is also what
// the tests substitute with an in-memory fake. The one real implementation
// claims the adapter's bulk endpoint pair through gousb.
//
// Device discovery is a straight probe of KnownDevices; absence of a device
// is ErrDeviceNotFound, reported to the caller rather than retried.
package transport
