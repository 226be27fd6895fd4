package transport

import (
	"errors"
	"fmt"
	"io"
)

// ErrDeviceNotFound is returned when no compatible adapter is attached.
// This is reported to the caller directly and is never retried
// automatically.
var ErrDeviceNotFound = errors.New("no compatible device found")

// Transport is the raw byte pipe to the adapter. Read blocks until data
// arrives or the transport is closed; Write must deliver the whole buffer
// or return an error. Close unblocks any pending Read.
//
// Implementations own the underlying device handle exclusively and must
// release it on Close regardless of how the session ended.
type Transport interface {
	io.ReadWriteCloser
}

// DeviceID identifies a USB adapter model by vendor/product pair.
type DeviceID struct {
	Vendor  uint16
	Product uint16
}

func (d DeviceID) String() string {
	return fmt.Sprintf("%04x:%04x", d.Vendor, d.Product)
}

// KnownDevices lists the adapter models the engine probes for, in order.
var KnownDevices = []DeviceID{
	{Vendor: 0x1314, Product: 0x1520},
	{Vendor: 0x1314, Product: 0x1521},
}
