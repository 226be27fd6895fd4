package driver

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/autokit/carlink/internal/config"
	"github.com/autokit/carlink/internal/logging"
	"github.com/autokit/carlink/internal/protocol"
	"github.com/autokit/carlink/internal/transport"
)

const (
	// heartbeatInterval keeps the adapter's session alive; the firmware
	// drops hosts that go quiet for much longer than this.
	heartbeatInterval = 2 * time.Second

	// wifiConnectDelay gives the adapter time to bring its radio up after
	// the init burst before it is told to connect.
	wifiConnectDelay = time.Second

	// maxErrorCount bounds consecutive malformed messages before the
	// session is declared dead.
	maxErrorCount = 20

	// joinTimeout bounds how long Close waits for the loops. A reader
	// stuck in a USB transfer must not wedge shutdown.
	joinTimeout = 2 * time.Second
)

// ErrDriverClosed is returned by Send after Close or a failure.
var ErrDriverClosed = errors.New("driver: closed")

// Driver owns one open session with the adapter: the init sequence, a
// blocking read loop, a heartbeat loop, and a serialized write path. It
// knows nothing about connection state; failures are reported once through
// the failure callback and the owner decides whether to reconnect.
type Driver struct {
	tr  transport.Transport
	cfg config.Dongle

	writeMu sync.Mutex

	onMessage []func(protocol.Message)
	onFailure []func(error)

	running  atomic.Bool
	started  atomic.Bool
	stop     chan struct{}
	readDone chan struct{}
	hbDone   chan struct{}

	// hbInterval is shortened by tests.
	hbInterval time.Duration

	failOnce  sync.Once
	closeOnce sync.Once
}

// New wraps an already-open transport. Callbacks must be registered before
// Start.
func New(tr transport.Transport, cfg config.Dongle) *Driver {
	return &Driver{
		tr:         tr,
		cfg:        cfg,
		stop:       make(chan struct{}),
		readDone:   make(chan struct{}),
		hbDone:     make(chan struct{}),
		hbInterval: heartbeatInterval,
	}
}

// OnMessage registers a callback for every decoded incoming message.
// Callbacks run on the read loop goroutine and must not block.
func (d *Driver) OnMessage(fn func(protocol.Message)) {
	d.onMessage = append(d.onMessage, fn)
}

// OnFailure registers a callback invoked at most once, when the session
// dies from a transport error or too many consecutive decode failures.
func (d *Driver) OnFailure(fn func(error)) {
	d.onFailure = append(d.onFailure, fn)
}

// Start sends the init sequence and launches the read and heartbeat loops.
// The delayed wifiConnect command is scheduled rather than slept on.
func (d *Driver) Start() error {
	d.running.Store(true)
	d.started.Store(true)

	logging.Info("sending init sequence",
		zap.Int("width", d.cfg.Width),
		zap.Int("height", d.cfg.Height),
		zap.Int("fps", d.cfg.FPS),
		zap.Int("dpi", d.cfg.DPI))

	for _, m := range d.initSequence() {
		if err := d.Send(m); err != nil {
			return fmt.Errorf("driver: init sequence: %w", err)
		}
	}

	go d.readLoop()
	go d.heartbeatLoop()
	go func() {
		t := time.NewTimer(wifiConnectDelay)
		defer t.Stop()
		select {
		case <-t.C:
			if err := d.Send(protocol.SendCommand{Value: protocol.CmdWifiConnect}); err != nil {
				logging.Warn("wifiConnect send failed", zap.Error(err))
			}
		case <-d.stop:
		}
	}()

	return nil
}

func (d *Driver) initSequence() []protocol.Sendable {
	c := d.cfg

	wifiBand := protocol.CmdWifi24G
	if c.WifiBand == config.WifiBand5GHz {
		wifiBand = protocol.CmdWifi5G
	}
	mic := protocol.CmdMic
	if c.MicSource == config.MicSourceBox {
		mic = protocol.CmdBoxMic
	}
	audioTransfer := protocol.CmdAudioTransferOff
	if c.AudioTransfer {
		audioTransfer = protocol.CmdAudioTransferOn
	}

	msgs := []protocol.Sendable{
		protocol.SendNumber(uint32(c.DPI), protocol.FileDPI),
		protocol.SendOpen{
			Width:         uint32(c.Width),
			Height:        uint32(c.Height),
			FPS:           uint32(c.FPS),
			Format:        uint32(c.Format),
			PacketMax:     uint32(c.PacketMax),
			IBoxVersion:   uint32(c.IBoxVersion),
			PhoneWorkMode: uint32(c.PhoneWorkMode),
		},
		protocol.SendBoolean(c.NightMode, protocol.FileNightMode),
		protocol.SendNumber(uint32(c.HandDrive), protocol.FileHandDriveMode),
		protocol.SendBoolean(true, protocol.FileChargeMode),
		protocol.SendString(c.BoxName, protocol.FileBoxName),
		protocol.SendBoxSettings{
			MediaDelay: c.MediaDelay,
			Width:      uint32(c.Width),
			Height:     uint32(c.Height),
		},
		protocol.SendCommand{Value: protocol.CmdWifiEnable},
		protocol.SendCommand{Value: wifiBand},
		protocol.SendCommand{Value: mic},
		protocol.SendCommand{Value: audioTransfer},
	}

	if c.AndroidWorkMode != nil {
		msgs = append(msgs, protocol.SendBoolean(*c.AndroidWorkMode, protocol.FileAndroidWorkMode))
	}

	return msgs
}

// Send encodes and writes one message. Writes are serialized so heartbeat,
// commands, and touch events never interleave mid-message on the wire.
func (d *Driver) Send(m protocol.Sendable) error {
	if !d.running.Load() {
		return ErrDriverClosed
	}

	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	buf := protocol.Encode(m)
	n, err := d.tr.Write(buf)
	if err != nil {
		if d.running.Load() {
			d.fail(fmt.Errorf("driver: write %s: %w", m.SendType(), err))
		}
		return err
	}
	if n != len(buf) {
		err := fmt.Errorf("driver: write %s: %w", m.SendType(), io.ErrShortWrite)
		d.fail(err)
		return err
	}

	logging.LogMessage("out", m.SendType().String(), buf[protocol.HeaderSize:])
	return nil
}

// UpdateVideoSettings pushes a new resolution and DPI to the adapter. The
// phone only honors it on its next connection, so the usual flow is to save
// config and cycle the session.
func (d *Driver) UpdateVideoSettings(width, height, dpi int) error {
	if width <= 0 || height <= 0 || dpi <= 0 {
		return &config.ConfigError{Field: "dongle.video", Reason: "dimensions and dpi must be positive"}
	}

	d.cfg.Width = width
	d.cfg.Height = height
	d.cfg.DPI = dpi

	if err := d.Send(protocol.SendNumber(uint32(dpi), protocol.FileDPI)); err != nil {
		return err
	}
	return d.Send(protocol.SendBoxSettings{
		MediaDelay: d.cfg.MediaDelay,
		Width:      uint32(width),
		Height:     uint32(height),
	})
}

func (d *Driver) readLoop() {
	defer close(d.readDone)

	r := protocol.NewReader(d.tr, uint32(d.cfg.PacketMax))
	errorCount := 0

	for d.running.Load() {
		msg, err := r.Next()
		if err != nil {
			if errors.Is(err, protocol.ErrTruncatedPayload) {
				errorCount++
				logging.Warn("dropping malformed message",
					zap.Error(err),
					zap.Int("error_count", errorCount))
				if errorCount >= maxErrorCount {
					d.fail(fmt.Errorf("driver: %d consecutive decode failures: %w", errorCount, err))
					return
				}
				continue
			}
			if !d.running.Load() {
				return
			}
			d.fail(fmt.Errorf("driver: read loop: %w", err))
			return
		}

		errorCount = 0
		if r.Discarded > 0 {
			logging.Debug("resynced stream", zap.Int("discarded_bytes", r.Discarded))
		}

		for _, fn := range d.onMessage {
			fn(msg)
		}
	}
}

func (d *Driver) heartbeatLoop() {
	defer close(d.hbDone)

	ticker := time.NewTicker(d.hbInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := d.Send(protocol.Heartbeat{}); err != nil {
				return
			}
		case <-d.stop:
			return
		}
	}
}

// fail marks the session dead and reports the cause exactly once.
func (d *Driver) fail(err error) {
	d.failOnce.Do(func() {
		d.running.Store(false)
		logging.Error("driver failed", zap.Error(err))
		// Callbacks run off the failing goroutine: a callback is
		// expected to call Close, which must not contend with the
		// write path that detected the failure.
		for _, fn := range d.onFailure {
			go fn(err)
		}
	})
}

// Close stops both loops and releases the transport. Closing the transport
// first unblocks a reader stuck in a USB transfer; each loop is then joined
// with a watchdog timeout so a wedged transfer cannot stall shutdown.
func (d *Driver) Close() error {
	var err error
	d.closeOnce.Do(func() {
		d.running.Store(false)
		close(d.stop)
		err = d.tr.Close()

		if !d.started.Load() {
			return
		}
		for name, done := range map[string]chan struct{}{
			"read":      d.readDone,
			"heartbeat": d.hbDone,
		} {
			select {
			case <-done:
			case <-time.After(joinTimeout):
				logging.Warn("loop did not exit in time, abandoning", zap.String("loop", name))
			}
		}
		logging.Debug("driver closed")
	})
	return err
}
