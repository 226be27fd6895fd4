package transport

import (
	"fmt"
	"sync"

	"github.com/google/gousb"

	"github.com/autokit/carlink/internal/logging"
	"go.uber.org/zap"
)

// USBOptions tunes device acquisition.
type USBOptions struct {
	// ResetOnOpen issues a port reset before claiming the interface. Some
	// hubs need it after an unclean shutdown; it is disruptive on others,
	// so it defaults to off.
	ResetOnOpen bool
}

// USB is a Transport over the adapter's bulk endpoints.
type USB struct {
	ctx     *gousb.Context
	dev     *gousb.Device
	release func()
	in      *gousb.InEndpoint
	out     *gousb.OutEndpoint

	closeOnce sync.Once
	closeErr  error

	// ID is the vendor/product pair the device matched.
	ID DeviceID
}

// OpenUSB probes KnownDevices in order and claims the first match. Returns
// ErrDeviceNotFound when nothing compatible is attached.
func OpenUSB(opts USBOptions) (*USB, error) {
	ctx := gousb.NewContext()

	var (
		dev *gousb.Device
		id  DeviceID
	)
	for _, candidate := range KnownDevices {
		d, err := ctx.OpenDeviceWithVIDPID(gousb.ID(candidate.Vendor), gousb.ID(candidate.Product))
		if err != nil {
			ctx.Close()
			return nil, fmt.Errorf("probing device %s: %w", candidate, err)
		}
		if d != nil {
			dev = d
			id = candidate
			break
		}
	}
	if dev == nil {
		ctx.Close()
		return nil, ErrDeviceNotFound
	}

	u, err := claim(ctx, dev, id, opts)
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, err
	}
	return u, nil
}

func claim(ctx *gousb.Context, dev *gousb.Device, id DeviceID, opts USBOptions) (*USB, error) {
	if opts.ResetOnOpen {
		if err := dev.Reset(); err != nil {
			logging.Warn("device reset failed, continuing", zap.String("device", id.String()), zap.Error(err))
		}
	}

	if err := dev.SetAutoDetach(true); err != nil {
		return nil, fmt.Errorf("detaching kernel driver from %s: %w", id, err)
	}

	intf, release, err := dev.DefaultInterface()
	if err != nil {
		return nil, fmt.Errorf("claiming interface on %s: %w", id, err)
	}

	inNum, outNum := -1, -1
	for _, ep := range intf.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		switch ep.Direction {
		case gousb.EndpointDirectionIn:
			if inNum < 0 {
				inNum = ep.Number
			}
		case gousb.EndpointDirectionOut:
			if outNum < 0 {
				outNum = ep.Number
			}
		}
	}
	if inNum < 0 || outNum < 0 {
		release()
		return nil, fmt.Errorf("device %s: bulk endpoint pair not found", id)
	}

	in, err := intf.InEndpoint(inNum)
	if err != nil {
		release()
		return nil, fmt.Errorf("opening IN endpoint on %s: %w", id, err)
	}
	out, err := intf.OutEndpoint(outNum)
	if err != nil {
		release()
		return nil, fmt.Errorf("opening OUT endpoint on %s: %w", id, err)
	}

	logging.Info("usb device claimed",
		zap.String("device", id.String()),
		zap.Int("in_endpoint", inNum),
		zap.Int("out_endpoint", outNum))

	return &USB{
		ctx:     ctx,
		dev:     dev,
		release: release,
		in:      in,
		out:     out,
		ID:      id,
	}, nil
}

// Read fills p from the bulk IN endpoint. Blocks until data arrives or the
// transport closes.
func (u *USB) Read(p []byte) (int, error) {
	return u.in.Read(p)
}

// Write pushes p to the bulk OUT endpoint.
func (u *USB) Write(p []byte) (int, error) {
	return u.out.Write(p)
}

// Close releases the interface and device handle. Safe to call more than
// once; pending reads fail once the handle is gone.
func (u *USB) Close() error {
	u.closeOnce.Do(func() {
		u.release()
		if err := u.dev.Close(); err != nil {
			u.closeErr = err
		}
		if err := u.ctx.Close(); err != nil && u.closeErr == nil {
			u.closeErr = err
		}
		logging.Debug("usb device released", zap.String("device", u.ID.String()))
	})
	return u.closeErr
}
