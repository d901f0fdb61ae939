package devserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/maquette-dev/maquette/internal/logging"
	"github.com/maquette-dev/maquette/pkg/preview"
	"github.com/maquette-dev/maquette/pkg/render"
)

// SocketMessageType discriminates messages on the preview channel.
type SocketMessageType string

const (
	// SocketTypeRender carries a settled render pass, server to client.
	SocketTypeRender SocketMessageType = "render"

	// SocketTypeEvent carries a host interaction, client to server.
	SocketTypeEvent SocketMessageType = "event"

	// SocketTypeMode carries a presentation mode change, client to server.
	SocketTypeMode SocketMessageType = "mode"
)

// SocketMessage is the wire envelope on the preview channel.
type SocketMessage struct {
	Type   SocketMessageType `json:"type"`
	Output *render.Output    `json:"output,omitempty"`
	Event  *preview.Event    `json:"event,omitempty"`
	Mode   string            `json:"mode,omitempty"`
}

// socketClient wraps one connection. gorilla/websocket allows only one
// concurrent writer per connection, so every write goes through the
// client's mutex, and render deliveries track the last generation the
// client has seen so an output settling late can never overwrite a
// newer one on the wire.
type socketClient struct {
	conn    *websocket.Conn
	mu      sync.Mutex
	lastGen uint64
}

func (c *socketClient) writeRender(gen uint64, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen <= c.lastGen {
		return nil
	}
	c.lastGen = gen
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// PreviewSocket manages WebSocket connections for the preview surface.
// Applied render passes are broadcast to every client; interaction
// events flow back into the harness log.
type PreviewSocket struct {
	harness *preview.Harness
	metrics *Metrics
	logger  *slog.Logger

	mu       sync.RWMutex
	clients  map[*websocket.Conn]*socketClient
	lastGen  uint64
	upgrader websocket.Upgrader
}

// NewPreviewSocket creates a socket hub bound to a harness.
func NewPreviewSocket(h *preview.Harness, metrics *Metrics, logger *slog.Logger) *PreviewSocket {
	if logger == nil {
		logger = logging.ForComponent("preview-socket")
	}
	return &PreviewSocket{
		harness: h,
		metrics: metrics,
		logger:  logger,
		clients: make(map[*websocket.Conn]*socketClient),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // local authoring tool
			},
		},
	}
}

// HandleWebSocket upgrades the connection and pumps messages until the
// client disconnects. A freshly attached client immediately receives
// the current output, if any pass has settled.
func (s *PreviewSocket) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	client := &socketClient{conn: conn}
	s.mu.Lock()
	s.clients[conn] = client
	out := s.harness.Current()
	s.mu.Unlock()
	s.metrics.ClientConnected()

	// The per-client generation check keeps this initial catch-up from
	// clobbering a broadcast that lands first.
	if out != nil {
		if data, err := json.Marshal(SocketMessage{Type: SocketTypeRender, Output: out}); err == nil {
			if err := client.writeRender(out.Generation, data); err != nil {
				s.logger.Debug("initial send failed", "error", err)
			}
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		s.handleClientMessage(data)
	}

	s.drop(conn)
}

// drop removes a client exactly once; both the read loop and a failed
// broadcast may race to remove the same connection.
func (s *PreviewSocket) drop(conn *websocket.Conn) {
	s.mu.Lock()
	_, present := s.clients[conn]
	delete(s.clients, conn)
	s.mu.Unlock()
	if present {
		s.metrics.ClientDisconnected()
		conn.Close()
	}
}

func (s *PreviewSocket) handleClientMessage(data []byte) {
	var msg SocketMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.logger.Debug("dropping malformed client message", "error", err)
		return
	}

	switch msg.Type {
	case SocketTypeEvent:
		if msg.Event != nil {
			s.harness.Record(*msg.Event)
		}
	case SocketTypeMode:
		switch msg.Mode {
		case "split":
			s.harness.SetMode(preview.ModeSplit)
		case "modal":
			s.harness.SetMode(preview.ModeModal)
		case "hidden":
			s.harness.SetMode(preview.ModeHidden)
		default:
			s.logger.Debug("ignoring unknown preview mode", "mode", msg.Mode)
		}
	default:
		s.logger.Debug("ignoring unknown client message", "type", msg.Type)
	}
}

// Broadcast sends a settled render pass to all connected clients.
// Subscriber callbacks for different generations run on different
// goroutines, so a slow pass can arrive here after a newer one was
// already delivered; those stale outputs are dropped.
func (s *PreviewSocket) Broadcast(out *render.Output) {
	data, err := json.Marshal(SocketMessage{Type: SocketTypeRender, Output: out})
	if err != nil {
		s.logger.Warn("encoding render pass for broadcast", "error", err)
		return
	}

	s.mu.Lock()
	if out.Generation <= s.lastGen {
		s.mu.Unlock()
		s.logger.Debug("dropping out-of-order render pass", "generation", out.Generation)
		return
	}
	s.lastGen = out.Generation
	clients := make([]*socketClient, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.Unlock()

	for _, client := range clients {
		if err := client.writeRender(out.Generation, data); err != nil {
			s.drop(client.conn)
		}
	}
}

// ClientCount returns the number of connected clients.
func (s *PreviewSocket) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close closes all client connections.
func (s *PreviewSocket) Close() {
	s.mu.Lock()
	clients := make([]*socketClient, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.Unlock()

	for _, client := range clients {
		s.drop(client.conn)
	}
}
