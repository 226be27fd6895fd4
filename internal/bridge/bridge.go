package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/autokit/carlink/internal/carlink"
	"github.com/autokit/carlink/internal/logging"
	"github.com/autokit/carlink/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Per-client outbound queue; full queues drop frames rather than
	// stalling the engine.
	sendBuf = 64

	shutdownTimeout = 5 * time.Second
)

// Controller is the engine surface the bridge drives. *carlink.Node
// satisfies it.
type Controller interface {
	Status() string
	OnEvent(fn func(carlink.Event))
	SendTouch(x, y float64, action protocol.TouchAction) error
	SendKey(name string) error
	SetVolume(v float64)
	UpdateVideoSettings(width, height, dpi int) error
}

// Server exposes the engine over a websocket: every engine event is
// broadcast to all connected clients as JSON, and clients send control
// commands (touch, key, volume) back.
type Server struct {
	addr string
	node Controller

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

// NewServer creates a bridge listening on addr once Run is called. The event
// subscription is registered here, before the engine starts emitting, and
// stays for the node's lifetime; with no clients connected the broadcast is a
// no-op.
func NewServer(addr string, node Controller) *Server {
	s := &Server{
		addr:    addr,
		node:    node,
		clients: make(map[*client]struct{}),
	}
	node.OnEvent(s.broadcast)
	return s
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleWS)

	httpServer := &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	logging.Info("bridge listening", zap.String("addr", s.addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		_ = httpServer.Shutdown(shutdownCtx)
		cancel()
		s.closeAll()
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuf),
	}
	s.addClient(c)
	logging.Info("bridge client connected", zap.String("remote_addr", conn.RemoteAddr().String()))

	// First message tells the client where the engine already is.
	c.trySend(mustEnvelope("statusChanged", StatusPayload{Status: s.node.Status()}))

	go c.writeLoop()
	s.readLoop(c)

	c.close()
	s.removeClient(c)
	logging.Info("bridge client disconnected", zap.String("remote_addr", conn.RemoteAddr().String()))
}

func (s *Server) readLoop(c *client) {
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.trySend(mustEnvelope("error", ErrorPayload{Message: "malformed command: " + err.Error()}))
			continue
		}
		if err := s.dispatch(c, cmd); err != nil {
			c.trySend(mustEnvelope("error", ErrorPayload{Message: err.Error()}))
		}
	}
}

func (s *Server) dispatch(c *client, cmd Command) error {
	switch cmd.Op {
	case OpTouch:
		action, ok := protocol.TouchActionByName(cmd.Action)
		if !ok {
			return &CommandError{Op: cmd.Op, Reason: "unknown touch action " + cmd.Action}
		}
		return s.node.SendTouch(cmd.X, cmd.Y, action)
	case OpKey:
		return s.node.SendKey(cmd.Name)
	case OpVolume:
		s.node.SetVolume(cmd.Value)
		return nil
	case OpVideoSettings:
		return s.node.UpdateVideoSettings(cmd.Width, cmd.Height, cmd.DPI)
	case OpStatus:
		c.trySend(mustEnvelope("statusChanged", StatusPayload{Status: s.node.Status()}))
		return nil
	default:
		return &CommandError{Op: cmd.Op, Reason: "unknown op"}
	}
}

// broadcast fans one engine event out to every connected client. Runs on
// engine goroutines, so it never blocks: a slow client loses the message.
func (s *Server) broadcast(e carlink.Event) {
	frame, ok := encodeEvent(e)
	if !ok {
		return
	}
	for _, c := range s.snapshotClients() {
		c.trySend(frame)
	}
}

func (s *Server) addClient(c *client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}

func (s *Server) snapshotClients() []*client {
	s.mu.RLock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()
	return clients
}

func (s *Server) closeAll() {
	for _, c := range s.snapshotClients() {
		c.close()
		s.removeClient(c)
	}
}

func (c *client) writeLoop() {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.close()
			return
		}
	}
}

func (c *client) trySend(msg []byte) {
	defer func() {
		_ = recover()
	}()
	select {
	case c.send <- msg:
	default:
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
		_ = c.conn.Close()
	})
}
