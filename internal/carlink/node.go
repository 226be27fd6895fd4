package carlink

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/autokit/carlink/internal/audio"
	"github.com/autokit/carlink/internal/config"
	"github.com/autokit/carlink/internal/driver"
	"github.com/autokit/carlink/internal/logging"
	"github.com/autokit/carlink/internal/protocol"
	"github.com/autokit/carlink/internal/transport"
	"github.com/autokit/carlink/internal/video"
)

const (
	// defaultPairTimeout is how long a paired phone gets to start
	// streaming before the engine nudges it with a wifiPair command.
	defaultPairTimeout = 15 * time.Second

	// openRetryDelay paces the unbounded first-connect retry loop.
	openRetryDelay = 3 * time.Second
)

// ErrNotConnected is returned by commands that need an open session.
var ErrNotConnected = errors.New("carlink: not connected")

// Node is the high-level engine facade: it owns the connection state
// machine, routes decoded messages into the audio ring and video assembler,
// and exposes imperative commands plus a typed-event callback surface.
type Node struct {
	cfg *config.Config
	mic Microphone

	handler func(Event)

	// openTransport acquires the device; swapped by tests.
	openTransport func() (transport.Transport, error)

	// pairTimeout is shortened by tests.
	pairTimeout time.Duration

	mu        sync.Mutex
	state     State
	drv       *driver.Driver
	ring      *audio.Ring
	asm       *video.Assembler
	pairTimer *time.Timer
	frameStop chan struct{}
	stopped   bool

	// pendingUnits buffers access units completed during an asm.Push while
	// mu is held; they are emitted after unlock.
	pendingUnits []video.AccessUnit

	// videoResumeAt suppresses video forwarding after a decoder error,
	// giving the phone time to reset the stream.
	videoResumeAt time.Time

	lastSong   string
	lastArtist string

	volume atomic.Uint64 // float64 bits, playback volume 0..1
}

// New builds a Node around a validated configuration. The microphone
// defaults to a no-op; the transport defaults to USB.
func New(cfg *config.Config) *Node {
	n := &Node{
		cfg:         cfg,
		mic:         NopMicrophone{},
		state:       State{Kind: StateDisconnected},
		pairTimeout: defaultPairTimeout,
		openTransport: func() (transport.Transport, error) {
			return transport.OpenUSB(transport.USBOptions{})
		},
	}
	n.volume.Store(math.Float64bits(1.0))
	return n
}

// SetMicrophone installs the host's capture collaborator. Must be called
// before Connect.
func (n *Node) SetMicrophone(m Microphone) {
	if m == nil {
		m = NopMicrophone{}
	}
	n.mic = m
}

// OnEvent installs the event handler. The handler runs on engine goroutines
// and must not block. Events emitted before a handler is installed are lost.
func (n *Node) OnEvent(fn func(Event)) {
	n.mu.Lock()
	n.handler = fn
	n.mu.Unlock()
}

// State returns a copy of the current connection state.
func (n *Node) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Status returns the host-facing status string.
func (n *Node) Status() string {
	return n.State().Status()
}

// Connect locates the adapter and opens a session. A missing device is
// returned immediately; any other open failure is retried on a fixed delay
// until it succeeds or ctx is cancelled. Once a session has been
// established, recovery switches to the bounded reconnect path.
func (n *Node) Connect(ctx context.Context) error {
	n.mu.Lock()
	if n.drv != nil {
		n.mu.Unlock()
		return nil
	}
	n.stopped = false
	n.mu.Unlock()

	n.setState(State{Kind: StateInitializing}, "connect requested")

	tr, err := n.openTransport()
	for err != nil {
		if errors.Is(err, transport.ErrDeviceNotFound) {
			n.setState(State{Kind: StateDisconnected}, "device not found")
			return err
		}
		logging.Warn("device open failed, retrying",
			zap.Error(err),
			zap.Duration("delay", openRetryDelay))

		select {
		case <-ctx.Done():
			n.setState(State{Kind: StateDisconnected}, "connect cancelled")
			return ctx.Err()
		case <-time.After(openRetryDelay):
		}
		tr, err = n.openTransport()
	}

	return n.startSession(tr)
}

// startSession hands the open transport to a fresh driver and kicks off the
// init sequence.
func (n *Node) startSession(tr transport.Transport) error {
	d := driver.New(tr, n.cfg.Dongle)
	d.OnMessage(n.handleMessage)
	d.OnFailure(n.handleFailure)

	n.mu.Lock()
	n.drv = d
	n.mu.Unlock()

	if err := d.Start(); err != nil {
		d.Close()
		n.mu.Lock()
		n.drv = nil
		n.mu.Unlock()
		return fmt.Errorf("carlink: starting session: %w", err)
	}

	n.setState(State{Kind: StateOpening}, "init sequence sent")
	return nil
}

// Disconnect tears the session down deliberately. Safe to call repeatedly.
func (n *Node) Disconnect() error {
	n.mu.Lock()
	n.stopped = true
	drv := n.drv
	n.drv = nil
	n.teardownSessionLocked()
	n.mu.Unlock()

	if drv != nil {
		// Best effort; the dongle resets its session state faster when
		// told instead of just losing the host.
		_ = drv.Send(protocol.CloseDongle{})
		drv.Close()
	}
	if err := n.mic.Stop(); err != nil {
		logging.Warn("microphone stop failed", zap.Error(err))
	}

	n.setState(State{Kind: StateDisconnected}, "disconnect requested")
	return nil
}

// SendTouch forwards a single-touch event. Coordinates are normalized 0..1.
func (n *Node) SendTouch(x, y float64, action protocol.TouchAction) error {
	drv := n.driver()
	if drv == nil {
		return ErrNotConnected
	}
	return drv.Send(protocol.SendTouch{X: x, Y: y, Action: action})
}

// SendMultiTouch forwards a multi-finger gesture frame. Each item carries
// normalized coordinates and a per-finger action and ID.
func (n *Node) SendMultiTouch(touches []protocol.TouchItem) error {
	drv := n.driver()
	if drv == nil {
		return ErrNotConnected
	}
	return drv.Send(protocol.SendMultiTouch{Touches: touches})
}

// SendKey sends a named key command ("home", "back", "play", "siri", ...).
func (n *Node) SendKey(name string) error {
	value, ok := protocol.CommandByName(name)
	if !ok {
		return fmt.Errorf("carlink: unknown key %q", name)
	}
	drv := n.driver()
	if drv == nil {
		return ErrNotConnected
	}
	return drv.Send(protocol.SendCommand{Value: value})
}

// DisconnectPhone drops the paired phone without closing the dongle; the
// phone may re-pair on its own.
func (n *Node) DisconnectPhone() error {
	drv := n.driver()
	if drv == nil {
		return ErrNotConnected
	}
	return drv.Send(protocol.DisconnectPhone{})
}

// UploadIcon installs the branding icon and label the phone shows for the
// adapter. The same PNG fills every size slot the dongle exposes; pass the
// largest you have and let the phone scale it.
func (n *Node) UploadIcon(label string, png []byte) error {
	drv := n.driver()
	if drv == nil {
		return ErrNotConnected
	}
	paths := []string{
		protocol.FileOEMIcon,
		protocol.FileIcon120,
		protocol.FileIcon180,
		protocol.FileIcon256,
	}
	for _, path := range paths {
		if err := drv.Send(protocol.SendFile{Name: path, Content: png}); err != nil {
			return err
		}
	}
	if err := drv.Send(protocol.SendIconConfig(label)); err != nil {
		return err
	}
	return drv.Send(protocol.SendCommand{Value: protocol.CmdRequestHostUI})
}

// SetVolume adjusts the host playback volume, clamped to 0..1. The value is
// read by the playback boundary via Volume; nothing goes over the wire.
func (n *Node) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	n.volume.Store(math.Float64bits(v))
}

// Volume returns the host playback volume.
func (n *Node) Volume() float64 {
	return math.Float64frombits(n.volume.Load())
}

// SendAudio pushes captured microphone samples (16 kHz mono S16LE) upstream
// to the phone.
func (n *Node) SendAudio(samples []int16) error {
	drv := n.driver()
	if drv == nil {
		return ErrNotConnected
	}
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return drv.Send(protocol.SendAudio{Data: buf})
}

// ReadAudio drains up to len(dst) of the oldest unread playback samples.
// Never blocks; returns 0 when no session is streaming.
func (n *Node) ReadAudio(dst []int16) int {
	n.mu.Lock()
	ring := n.ring
	n.mu.Unlock()
	if ring == nil {
		return 0
	}
	return ring.Read(dst)
}

// AudioFormat reports the PCM parameters of the current playback stream.
func (n *Node) AudioFormat() (sampleRate, channels int, ok bool) {
	n.mu.Lock()
	ring := n.ring
	n.mu.Unlock()
	if ring == nil {
		return 0, 0, false
	}
	return ring.SampleRate(), ring.Channels(), true
}

// UpdateVideoSettings applies a new resolution and DPI. The running session
// is told immediately, but the phone only honors it on its next connection;
// with no session open the values simply apply to the next one. Accepted
// values are written back to the config file; invalid values are rejected
// and the prior settings stay in force.
func (n *Node) UpdateVideoSettings(width, height, dpi int) error {
	trial := *n.cfg
	trial.Dongle.Width = width
	trial.Dongle.Height = height
	trial.Dongle.DPI = dpi
	if err := trial.Validate(); err != nil {
		return err
	}

	n.cfg.Dongle.Width = width
	n.cfg.Dongle.Height = height
	n.cfg.Dongle.DPI = dpi
	if err := n.cfg.Save(); err != nil {
		logging.Warn("video settings not persisted", zap.Error(err))
	}

	if drv := n.driver(); drv != nil {
		return drv.UpdateVideoSettings(width, height, dpi)
	}
	return nil
}

// ReportDecodeError is called by the external decoder boundary when an
// access unit fails to decode. The partial state is discarded and video
// forwarding pauses for the configured delay so the phone can reset its
// stream instead of feeding a tight failure loop.
func (n *Node) ReportDecodeError() {
	delay := time.Duration(n.cfg.DecoderErrorDelay) * time.Millisecond

	n.mu.Lock()
	n.videoResumeAt = time.Now().Add(delay)
	if n.asm != nil {
		n.asm.Flush()
	}
	n.mu.Unlock()

	logging.Warn("decoder error reported, pausing video", zap.Duration("delay", delay))
}

func (n *Node) driver() *driver.Driver {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.drv
}

// setState publishes a transition and its status projection. No-op when the
// state is unchanged.
func (n *Node) setState(s State, reason string) {
	n.mu.Lock()
	prev := n.state
	n.state = s
	n.mu.Unlock()

	if prev == s {
		return
	}
	logging.LogStateChange(prev.String(), s.String(), reason)
	n.emit(StatusChanged{State: s, Status: s.Status()})
}

func (n *Node) emit(e Event) {
	n.mu.Lock()
	fn := n.handler
	n.mu.Unlock()
	if fn != nil {
		fn(e)
	}
}

// teardownSessionLocked cancels the scheduled tasks and destroys the
// per-pairing stream structures. Caller holds mu.
func (n *Node) teardownSessionLocked() {
	if n.pairTimer != nil {
		n.pairTimer.Stop()
		n.pairTimer = nil
	}
	if n.frameStop != nil {
		close(n.frameStop)
		n.frameStop = nil
	}
	if n.ring != nil {
		n.ring.Reset()
		n.ring = nil
	}
	if n.asm != nil {
		n.asm.Flush()
		n.asm = nil
	}
}
