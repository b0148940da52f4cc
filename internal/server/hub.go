// internal/server/hub.go
package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"docuwhat/internal/logfields"
)

const writeWait = 5 * time.Second

// upgrader is used to upgrade HTTP connections to WebSocket connections.
// The dev server only listens for a local browser, so any origin is accepted.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub maintains the set of live-reload clients and broadcasts to them.
// Each client is tagged with an id for the logs.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]string
	logger  *slog.Logger
}

func newHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]string),
		logger:  logger,
	}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := uuid.NewString()
	h.clients[conn] = id
	h.logger.Debug("Live-reload client connected",
		slog.String("client", id),
		slog.Int("clients", len(h.clients)))
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if id, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
		h.logger.Debug("Live-reload client disconnected",
			slog.String("client", id),
			slog.Int("clients", len(h.clients)))
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcastMessage sends a message to all registered clients. Clients that
// fail to receive it are dropped.
func (h *Hub) broadcastMessage(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client, id := range h.clients {
		_ = client.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Warn("Error writing to live-reload client", slog.String("client", id), logfields.Error(err))
			client.Close()
			delete(h.clients, client)
		}
	}
}

// closeAll sends a close frame to every client and forgets them.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for client := range h.clients {
		_ = client.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		client.Close()
		delete(h.clients, client)
	}
}

// serveWs handles WebSocket requests from the peer.
func (h *Hub) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", logfields.Error(err))
		return
	}
	h.register(conn)

	// Clients never send; reading only detects the close.
	defer h.unregister(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
