package carlink

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/autokit/carlink/internal/audio"
	"github.com/autokit/carlink/internal/logging"
	"github.com/autokit/carlink/internal/protocol"
	"github.com/autokit/carlink/internal/video"
)

// handleMessage routes every decoded message. Runs on the driver's read
// goroutine.
func (n *Node) handleMessage(msg protocol.Message) {
	switch m := msg.(type) {
	case *protocol.Opened:
		n.handleOpened(m)
	case *protocol.Plugged:
		n.handlePlugged(m)
	case *protocol.Unplugged:
		n.handleUnplugged()
	case *protocol.VideoData:
		n.handleVideo(m)
	case *protocol.AudioData:
		n.handleAudio(m)
	case *protocol.MediaData:
		n.handleMedia(m)
	case *protocol.Command:
		n.emit(DongleCommand{Value: m.Value})
	case *protocol.StringInfo:
		logging.Debug("device info", zap.Stringer("type", m.Type), zap.String("value", m.Value))
		n.emit(DeviceInfo{Type: m.Type, Value: m.Value})
	case *protocol.Phase:
		logging.Debug("connection phase", zap.Uint32("phase", m.Phase))
	case *protocol.BoxInfo:
		logging.Debug("box settings", zap.Any("settings", m.Settings))
	case *protocol.HeartbeatAck:
		// Replies to our own heartbeats carry no information.
	case *protocol.ManufacturerInfo:
		logging.Debug("manufacturer info", zap.Uint32("a", m.A), zap.Uint32("b", m.B))
	case *protocol.Unknown:
		logging.Debug("unhandled message", zap.Stringer("type", m.Type), zap.Int("bytes", len(m.Data)))
	}
}

func (n *Node) handleOpened(m *protocol.Opened) {
	logging.Info("session opened",
		zap.Uint32("width", m.Width),
		zap.Uint32("height", m.Height),
		zap.Uint32("fps", m.FPS))
	n.setState(State{Kind: StateAwaitingPhone}, "open acknowledged")
}

func (n *Node) handlePlugged(m *protocol.Plugged) {
	interval := n.frameInterval(m.PhoneType)

	n.mu.Lock()
	// A re-pair replaces any leftover per-pairing state wholesale.
	n.teardownSessionLocked()
	n.asm = video.NewAssembler(n.collectUnit)
	n.videoResumeAt = time.Time{}
	n.lastSong = ""
	n.lastArtist = ""

	if interval > 0 {
		n.startFrameTickerLocked(interval)
	}
	n.armPairTimerLocked()
	n.mu.Unlock()

	n.setState(State{Kind: StatePaired, PhoneType: m.PhoneType}, "phone plugged")
	n.emit(PhoneConnected{PhoneType: m.PhoneType})
}

func (n *Node) handleUnplugged() {
	n.mu.Lock()
	n.teardownSessionLocked()
	n.mu.Unlock()

	if err := n.mic.Stop(); err != nil {
		logging.Warn("microphone stop failed", zap.Error(err))
	}

	n.setState(State{Kind: StateAwaitingPhone}, "phone unplugged")
	n.emit(PhoneDisconnected{})
}

func (n *Node) handleVideo(m *protocol.VideoData) {
	n.cancelPairTimer()

	n.mu.Lock()
	if !n.videoResumeAt.IsZero() && time.Now().Before(n.videoResumeAt) {
		n.mu.Unlock()
		return
	}
	if n.asm == nil {
		// Stream data can race the Plugged notification.
		n.asm = video.NewAssembler(n.collectUnit)
	}
	n.asm.Push(video.Chunk{
		Data:     m.Data,
		Width:    int(m.Width),
		Height:   int(m.Height),
		Flags:    m.Flags,
		FrameNum: m.FrameNum,
	})
	units := n.pendingUnits
	n.pendingUnits = nil
	n.mu.Unlock()

	for _, u := range units {
		n.emit(VideoFrame{Unit: u})
	}
}

// collectUnit buffers completed access units while mu is held during Push;
// handleVideo emits them after unlocking.
func (n *Node) collectUnit(u video.AccessUnit) {
	n.pendingUnits = append(n.pendingUnits, u)
}

func (n *Node) handleAudio(m *protocol.AudioData) {
	n.cancelPairTimer()

	if m.Command != 0 {
		n.handleAudioCommand(m.Command)
		return
	}
	if m.HasVolumeDuration {
		logging.Debug("volume ramp",
			zap.Float32("volume", m.Volume),
			zap.Float32("duration", m.VolumeDuration))
		return
	}
	if len(m.Data) == 0 {
		return
	}

	format, ok := m.Format()
	if !ok {
		logging.Debug("unknown audio decode type", zap.Uint32("decode_type", m.DecodeType))
		return
	}

	samples := m.Samples()
	n.mu.Lock()
	if n.ring == nil || n.ring.SampleRate() != format.SampleRate || n.ring.Channels() != format.Channels {
		n.ring = audio.NewRing(n.cfg.Audio.BufferSeconds, format.SampleRate, format.Channels)
	}
	n.ring.Write(samples)
	n.mu.Unlock()

	n.emit(AudioReceived{
		Samples:    len(samples),
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
	})
}

func (n *Node) handleAudioCommand(cmd protocol.AudioCommand) {
	switch cmd {
	case protocol.AudioSiriStart, protocol.AudioPhonecallStart:
		logging.Info("audio capture requested", zap.Stringer("command", cmd))
		if err := n.mic.Start(); err != nil {
			logging.Warn("microphone start failed", zap.Error(err))
		}
	case protocol.AudioSiriStop, protocol.AudioPhonecallStop:
		logging.Info("audio capture released", zap.Stringer("command", cmd))
		if err := n.mic.Stop(); err != nil {
			logging.Warn("microphone stop failed", zap.Error(err))
		}
	default:
		logging.Debug("audio command", zap.Stringer("command", cmd))
	}
}

func (n *Node) handleMedia(m *protocol.MediaData) {
	n.cancelPairTimer()

	if m.Type == protocol.MediaTypeAlbumCover {
		n.emit(AlbumArt{Data: m.AlbumArt})
		return
	}
	if len(m.Media) == 0 {
		return
	}

	if title, ok := mediaString(m.Media, "MediaSongTitle"); ok {
		song := SongChanged{
			Title:      title,
			Album:      mediaStringOr(m.Media, "MediaAlbum", ""),
			PlayTimeMs: mediaInt(m.Media, "MediaSongPlayTime"),
			DurationMs: mediaInt(m.Media, "MediaSongDuration"),
		}
		artist := mediaStringOr(m.Media, "MediaArtist", "")

		n.mu.Lock()
		songChanged := n.lastSong != title
		artistChanged := artist != "" && n.lastArtist != artist
		n.lastSong = title
		if artist != "" {
			n.lastArtist = artist
		}
		n.mu.Unlock()

		if songChanged {
			n.emit(song)
		}
		if artistChanged {
			n.emit(ArtistChanged{Artist: artist})
		}
	}

	if nav := extractNavigation(m.Media); nav != nil {
		n.emit(*nav)
	}

	if status, ok := mediaString(m.Media, "PhoneCallStatus"); ok {
		n.emit(PhoneCall{
			Status: status,
			Caller: mediaStringOr(m.Media, "PhoneCaller", ""),
		})
	}
}

func extractNavigation(media map[string]any) *NavigationChanged {
	_, hasRoad := mediaString(media, "NaviCurrentRoad")
	_, hasManeuver := mediaString(media, "NaviManeuver")
	if !hasRoad && !hasManeuver && mediaFloat(media, "NaviDistance") == 0 {
		return nil
	}
	return &NavigationChanged{
		CurrentRoad:  mediaStringOr(media, "NaviCurrentRoad", ""),
		NextRoad:     mediaStringOr(media, "NaviNextRoad", ""),
		Distance:     mediaFloat(media, "NaviDistance"),
		DistanceUnit: mediaStringOr(media, "NaviDistanceUnit", ""),
		Maneuver:     mediaStringOr(media, "NaviManeuver", ""),
		ETA:          mediaStringOr(media, "NaviETA", ""),
	}
}

func mediaString(media map[string]any, key string) (string, bool) {
	s, ok := media[key].(string)
	return s, ok && s != ""
}

func mediaStringOr(media map[string]any, key, fallback string) string {
	if s, ok := mediaString(media, key); ok {
		return s
	}
	return fallback
}

func mediaInt(media map[string]any, key string) int {
	return int(mediaFloat(media, key))
}

func mediaFloat(media map[string]any, key string) float64 {
	f, _ := media[key].(float64)
	return f
}

// frameInterval resolves the keep-alive interval for a phone kind. Zero
// disables the timer.
func (n *Node) frameInterval(pt protocol.PhoneType) time.Duration {
	switch pt {
	case protocol.PhoneCarPlay:
		return time.Duration(n.cfg.Dongle.CarPlayFrameInterval) * time.Millisecond
	case protocol.PhoneAndroidAuto:
		return time.Duration(n.cfg.Dongle.AndroidAutoFrameInterval) * time.Millisecond
	default:
		return 0
	}
}

// startFrameTickerLocked periodically sends the frame command that keeps
// the mirrored session alive. Caller holds mu.
func (n *Node) startFrameTickerLocked(interval time.Duration) {
	stop := make(chan struct{})
	n.frameStop = stop

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				drv := n.driver()
				if drv == nil {
					return
				}
				if err := drv.Send(protocol.SendCommand{Value: protocol.CmdFrame}); err != nil {
					return
				}
			case <-stop:
				return
			}
		}
	}()
}

// armPairTimerLocked schedules the one-shot wifiPair nudge. Armed exactly
// once per pairing; the first stream data cancels it. Caller holds mu.
func (n *Node) armPairTimerLocked() {
	n.pairTimer = time.AfterFunc(n.pairTimeout, func() {
		drv := n.driver()
		if drv == nil {
			return
		}
		logging.Info("pairing quiet, sending wifiPair nudge")
		if err := drv.Send(protocol.SendCommand{Value: protocol.CmdWifiPair}); err != nil {
			logging.Warn("wifiPair send failed", zap.Error(err))
		}
	})
}

func (n *Node) cancelPairTimer() {
	n.mu.Lock()
	if n.pairTimer != nil {
		n.pairTimer.Stop()
		n.pairTimer = nil
	}
	n.mu.Unlock()
}

// handleFailure runs when the driver declares the session dead. The
// established-session recovery path is bounded, unlike the first-connect
// retry loop.
func (n *Node) handleFailure(cause error) {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return
	}
	drv := n.drv
	n.drv = nil
	n.teardownSessionLocked()
	n.mu.Unlock()

	if drv != nil {
		drv.Close()
	}

	n.reconnect(cause)
}

func (n *Node) reconnect(cause error) {
	delay := time.Duration(n.cfg.Reconnect.Delay) * time.Millisecond
	maxAttempts := n.cfg.Reconnect.MaxAttempts

	attempt := 0
	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(maxAttempts-1))

	err := backoff.Retry(func() error {
		n.mu.Lock()
		if n.stopped {
			n.mu.Unlock()
			return backoff.Permanent(ErrNotConnected)
		}
		n.mu.Unlock()

		attempt++
		n.setState(State{Kind: StateReconnecting, Attempt: attempt}, cause.Error())
		logging.Info("reconnecting",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts))

		tr, err := n.openTransport()
		if err != nil {
			return err
		}
		return n.startSession(tr)
	}, policy)

	if err == nil {
		return
	}
	if n.State().Kind == StateDisconnected {
		// Disconnect won the race; the stop is deliberate.
		return
	}
	n.setState(State{Kind: StateFailed, Reason: err.Error()}, "reconnect attempts exhausted")
}
