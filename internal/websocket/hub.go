package websocket

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"ytquery-web/internal/chat"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub streams chat view snapshots to the page that owns the view. When the
// page's socket goes away the view is torn down.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]*websocket.Conn
	registry    *chat.Registry
	log         *slog.Logger
}

func NewHub(registry *chat.Registry, log *slog.Logger) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID]*websocket.Conn),
		registry:    registry,
		log:         log,
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	viewID, err := uuid.Parse(r.URL.Query().Get("view"))
	if err != nil {
		http.Error(w, "Invalid view ID", http.StatusBadRequest)
		return
	}

	view, ok := h.registry.Get(viewID, chi.URLParam(r, "videoId"))
	if !ok {
		http.Error(w, "Chat view not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	h.registerConnection(viewID, conn)

	// Only the newest snapshot matters, so the buffer holds one.
	updates := make(chan chat.Snapshot, 1)
	push := func(s chat.Snapshot) {
		for {
			select {
			case updates <- s:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	}

	unsubscribe := view.Subscribe(push)

	done := make(chan struct{})
	go h.writePump(conn, updates, done)

	defer func() {
		unsubscribe()
		close(done)
		// A newer socket for the same view takes over the view.
		if h.unregisterConnection(viewID, conn) {
			h.registry.Close(viewID)
		}
	}()

	h.readPump(conn)
}

// readPump only watches for the client going away.
func (h *Hub) readPump(conn *websocket.Conn) {
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, updates <-chan chat.Snapshot, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case snap := <-updates:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap); err != nil {
				conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				conn.Close()
				return
			}
		}
	}
}

func (h *Hub) registerConnection(viewID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.connections[viewID]; ok {
		old.Close()
	}
	h.connections[viewID] = conn

	h.log.Debug("websocket connected",
		slog.String("view_id", viewID.String()),
		slog.Int("total", len(h.connections)),
	)
}

// unregisterConnection reports whether conn was still the view's current socket.
func (h *Hub) unregisterConnection(viewID uuid.UUID, conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()
	current := h.connections[viewID] == conn
	if current {
		delete(h.connections, viewID)
	}

	h.log.Debug("websocket disconnected",
		slog.String("view_id", viewID.String()),
		slog.Bool("replaced", !current),
	)
	return current
}

// Connections reports how many sockets are open.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// CloseAll drops every open socket, used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, conn := range h.connections {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(time.Second))
		conn.Close()
		delete(h.connections, id)
	}
}
