package bridge

import (
	"context"
	"encoding/json"
	"net"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/autokit/carlink/internal/carlink"
	"github.com/autokit/carlink/internal/protocol"
)

// fakeController records commands and lets tests inject events.
type fakeController struct {
	mu       sync.Mutex
	handlers []func(carlink.Event)
	touches  []protocol.TouchAction
	keys     []string
	volume   float64
}

func (f *fakeController) Status() string { return "Disconnected" }

func (f *fakeController) OnEvent(fn func(carlink.Event)) {
	f.mu.Lock()
	f.handlers = append(f.handlers, fn)
	f.mu.Unlock()
}

func (f *fakeController) SendTouch(x, y float64, action protocol.TouchAction) error {
	f.mu.Lock()
	f.touches = append(f.touches, action)
	f.mu.Unlock()
	return nil
}

func (f *fakeController) SendKey(name string) error {
	f.mu.Lock()
	f.keys = append(f.keys, name)
	f.mu.Unlock()
	if name == "bogus" {
		return &CommandError{Op: OpKey, Reason: "unknown key"}
	}
	return nil
}

func (f *fakeController) SetVolume(v float64) {
	f.mu.Lock()
	f.volume = v
	f.mu.Unlock()
}

func (f *fakeController) UpdateVideoSettings(width, height, dpi int) error { return nil }

func (f *fakeController) emit(e carlink.Event) {
	f.mu.Lock()
	handlers := append([]func(carlink.Event)(nil), f.handlers...)
	f.mu.Unlock()
	for _, fn := range handlers {
		fn(e)
	}
}

func startBridge(t *testing.T, node *fakeController) *websocket.Conn {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen free port: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(addr, node)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx)
	}()

	dialURL := url.URL{Scheme: "ws", Host: addr, Path: "/"}
	var conn *websocket.Conn
	for i := 0; i < 80; i++ {
		conn, _, err = websocket.DefaultDialer.Dial(dialURL.String(), nil)
		if err == nil {
			break
		}
		time.Sleep(25 * time.Millisecond)
	}
	if err != nil {
		cancel()
		t.Fatalf("dial bridge websocket: %v", err)
	}

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		select {
		case err := <-errCh:
			if err != nil {
				t.Fatalf("bridge run error: %v", err)
			}
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for bridge shutdown")
		}
	})

	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	return env
}

func waitEnvelope(t *testing.T, conn *websocket.Conn, event string) Envelope {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		env := readEnvelope(t, conn)
		if env.Event == event {
			return env
		}
	}
	t.Fatalf("envelope %q not seen", event)
	panic("unreachable")
}

func TestNewServerSubscribesBeforeRun(t *testing.T) {
	node := &fakeController{}
	NewServer("127.0.0.1:0", node)

	node.mu.Lock()
	registered := len(node.handlers)
	node.mu.Unlock()
	if registered != 1 {
		t.Fatalf("handlers registered = %d, want 1 before Run is called", registered)
	}
}

func TestBridgeSendsInitialStatus(t *testing.T) {
	conn := startBridge(t, &fakeController{})

	env := readEnvelope(t, conn)
	if env.Event != "statusChanged" {
		t.Fatalf("first event = %q, want statusChanged", env.Event)
	}
	data, _ := env.Data.(map[string]any)
	if got, _ := data["status"].(string); got != "Disconnected" {
		t.Errorf("status = %q, want Disconnected", got)
	}
}

func TestBridgeBroadcastsEvents(t *testing.T) {
	node := &fakeController{}
	conn := startBridge(t, node)
	readEnvelope(t, conn) // initial status

	node.emit(carlink.PhoneConnected{PhoneType: protocol.PhoneCarPlay})
	env := waitEnvelope(t, conn, "phoneConnected")
	data, _ := env.Data.(map[string]any)
	if got, _ := data["phone_type"].(string); got != "CarPlay" {
		t.Errorf("phone_type = %q, want CarPlay", got)
	}

	node.emit(carlink.SongChanged{Title: "Dissolve", DurationMs: 180000})
	env = waitEnvelope(t, conn, "songChanged")
	data, _ = env.Data.(map[string]any)
	if got, _ := data["title"].(string); got != "Dissolve" {
		t.Errorf("title = %q, want Dissolve", got)
	}
}

func TestBridgeDispatchesCommands(t *testing.T) {
	node := &fakeController{}
	conn := startBridge(t, node)
	readEnvelope(t, conn)

	cmds := []Command{
		{Op: OpTouch, X: 0.2, Y: 0.8, Action: "down"},
		{Op: OpKey, Name: "home"},
		{Op: OpVolume, Value: 0.5},
	}
	for _, cmd := range cmds {
		if err := conn.WriteJSON(cmd); err != nil {
			t.Fatalf("write command: %v", err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		node.mu.Lock()
		done := len(node.touches) == 1 && len(node.keys) == 1 && node.volume == 0.5
		node.mu.Unlock()
		if done {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	node.mu.Lock()
	defer node.mu.Unlock()
	if len(node.touches) != 1 || node.touches[0] != protocol.TouchDown {
		t.Errorf("touches = %v, want single TouchDown", node.touches)
	}
	if len(node.keys) != 1 || node.keys[0] != "home" {
		t.Errorf("keys = %v, want [home]", node.keys)
	}
	if node.volume != 0.5 {
		t.Errorf("volume = %v, want 0.5", node.volume)
	}
}

func TestBridgeReportsCommandErrors(t *testing.T) {
	node := &fakeController{}
	conn := startBridge(t, node)
	readEnvelope(t, conn)

	if err := conn.WriteJSON(Command{Op: "teleport"}); err != nil {
		t.Fatalf("write command: %v", err)
	}
	env := waitEnvelope(t, conn, "error")
	data, _ := env.Data.(map[string]any)
	if msg, _ := data["message"].(string); msg == "" {
		t.Error("error envelope missing message")
	}

	if err := conn.WriteJSON(Command{Op: OpKey, Name: "bogus"}); err != nil {
		t.Fatalf("write command: %v", err)
	}
	waitEnvelope(t, conn, "error")
}

func TestEncodeEventSkipsInternal(t *testing.T) {
	if _, ok := encodeEvent(carlink.DongleCommand{Value: protocol.CmdFrame}); ok {
		t.Error("internal command event should not cross the bridge")
	}
	if _, ok := encodeEvent(carlink.DeviceInfo{}); ok {
		t.Error("device info event should not cross the bridge")
	}

	frame, ok := encodeEvent(carlink.StatusChanged{Status: "Connecting..."})
	if !ok {
		t.Fatal("status event should encode")
	}
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Event != "statusChanged" {
		t.Errorf("event = %q, want statusChanged", env.Event)
	}
}
