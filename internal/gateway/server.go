package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vk/hotpanel/internal/boundary"
	"github.com/vk/hotpanel/internal/model"
	"github.com/vk/hotpanel/internal/registry"
	"github.com/vk/hotpanel/internal/reporter"
)

// sendBuffer is the per-client outbound queue depth. A client that falls this
// far behind is disconnected.
const sendBuffer = 32

// ViewSource yields the currently mounted panel views for snapshots.
type ViewSource interface {
	Views() []boundary.View
}

// Snapshot is the full state pushed to every client on connect and after
// every mutation.
type Snapshot struct {
	Entries []model.Entry      `json:"entries"`
	Views   []boundary.View    `json:"views"`
	Errors  []model.PanelError `json:"errors"`
}

// controlMessage is an inbound client frame.
type controlMessage struct {
	Op    string             `json:"op"`
	Panel *model.PanelUpdate `json:"panel,omitempty"`
	ID    string             `json:"id,omitempty"`
}

// client is one connected websocket peer.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Server is the websocket gateway. It is safe for concurrent use.
type Server struct {
	logger   *slog.Logger
	baseCtx  context.Context
	reg      *registry.Registry
	rep      *reporter.Reporter
	views    ViewSource
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// New creates a gateway. baseCtx is the lifetime context control operations
// run under; it must outlive individual connections, because a compile
// triggered by one client keeps running after that client disconnects.
func New(baseCtx context.Context, logger *slog.Logger, reg *registry.Registry, rep *reporter.Reporter, views ViewSource) *Server {
	return &Server{
		logger:  logger,
		baseCtx: baseCtx,
		reg:     reg,
		rep:     rep,
		views:   views,
		upgrader: websocket.Upgrader{
			// The host UI may be served from a different origin in dev.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Handler returns the HTTP mux for the gateway: /ws and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Run serves the gateway until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: s.Handler()}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("🔌 Gateway listening.", "address", fmt.Sprintf("ws://localhost%s/ws", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("gateway server failed: %w", err)
	}
}

// healthHandler reports liveness.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// Broadcast pushes the current snapshot to every connected client. Clients
// whose queue is full are dropped.
func (s *Server) Broadcast() {
	payload, err := json.Marshal(s.snapshot())
	if err != nil {
		s.logger.Error("Failed to marshal snapshot.", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- payload:
		default:
			s.logger.Warn("Dropping slow gateway client.")
			delete(s.clients, c)
			close(c.send)
		}
	}
}

// snapshot assembles the full outbound state.
func (s *Server) snapshot() Snapshot {
	return Snapshot{
		Entries: s.reg.Snapshot(),
		Views:   s.views.Views(),
		Errors:  s.rep.AllErrors(),
	}
}

// handleWS upgrades one connection and pumps frames both ways.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed.", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Debug("Gateway client connected.", "remote_addr", r.RemoteAddr)

	// The connecting client gets the current snapshot before anything else.
	if payload, err := json.Marshal(s.snapshot()); err == nil {
		c.send <- payload
	}

	go c.writePump()
	s.readPump(c)

	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	conn.Close()
	s.logger.Debug("Gateway client disconnected.", "remote_addr", r.RemoteAddr)
}

// writePump drains the client's queue onto the wire.
func (c *client) writePump() {
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// readPump consumes control frames until the connection dies.
func (s *Server) readPump(c *client) {
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg controlMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Warn("Ignoring malformed control frame.", "error", err)
			continue
		}
		s.dispatch(msg)
	}
}

// dispatch applies one control frame to the registry.
func (s *Server) dispatch(msg controlMessage) {
	switch msg.Op {
	case "update":
		if msg.Panel == nil {
			s.logger.Warn("Update control frame without panel payload.")
			return
		}
		s.reg.RegisterFromUpdate(s.baseCtx, *msg.Panel)
	case "retry":
		s.reg.Retry(s.baseCtx, msg.ID)
	case "unregister":
		s.reg.Unregister(msg.ID)
	default:
		s.logger.Warn("Unknown control op.", "op", msg.Op)
	}
}
