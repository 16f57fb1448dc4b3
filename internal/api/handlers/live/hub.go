// Package live pushes stale notices over websockets to clients that are
// displaying a cached view, so they can refetch it.
package live

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"Snapgram/internal/core/querycache"
	"Snapgram/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 16 << 10
	sendBuffer     = 64

	// MaxWatchedKeys bounds how many views one connection may watch
	MaxWatchedKeys = 256
)

// Message types exchanged with clients
const (
	TypeWatch    = "watch"
	TypeUnwatch  = "unwatch"
	TypeWatching = "watching"
	TypeStale    = "stale"
	TypeError    = "error"
)

// Message is the JSON frame in both directions
type Message struct {
	Type  string           `json:"type"`
	Error string           `json:"error,omitempty"`
	Keys  []querycache.Key `json:"keys,omitempty"`
}

// Hub tracks live connections and the views each one watches.
// It implements querycache.Notifier.
type Hub struct {
	clients  map[*client]struct{}
	logger   *slog.Logger
	upgrader websocket.Upgrader
	mu       sync.RWMutex
}

// NewHub creates a hub. allowedOrigins empty accepts any origin.
func NewHub(allowedOrigins []string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(r *http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// ServeHTTP handles GET /live, upgrading to a websocket
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("[LIVE] websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		watched: make(map[querycache.Key]struct{}),
	}
	h.register(c)

	go c.writePump()
	go c.readPump()
}

// NotifyStale sends each client the watched keys that fall under any of the
// invalidated prefixes. Clients that can't keep up are disconnected.
func (h *Hub) NotifyStale(prefixes []querycache.Key) {
	if len(prefixes) == 0 {
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		stale := c.staleKeys(prefixes)
		if len(stale) == 0 {
			continue
		}
		payload, err := json.Marshal(Message{Type: TypeStale, Keys: stale})
		if err != nil {
			h.logger.Error("[LIVE] failed to encode stale notice", "error", err)
			continue
		}
		if !c.enqueue(payload) {
			h.logger.Warn("[LIVE] dropping slow client")
			h.unregister(c)
		}
	}
}

// Count returns the number of live connections
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.unregister(c)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	metrics.LiveConnections.Inc()
}

// unregister is idempotent; the send channel is closed exactly once
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	h.mu.Unlock()
	if !ok {
		return
	}

	c.mu.Lock()
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	metrics.LiveConnections.Dec()
}

var _ querycache.Notifier = (*Hub)(nil)
