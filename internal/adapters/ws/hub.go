// Package ws provides the WebSocket event hub for the taskdog system.
// The hub implements core.EventBroadcaster: every mutation event is fanned
// out to the connected clients, each behind its own bounded send queue so a
// slow client never blocks a fast one.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/taskdog/taskdog/internal/domain/model"
	"github.com/taskdog/taskdog/internal/observability/statsd"
)

const (
	defaultQueueSize    = 32
	defaultWriteTimeout = 10 * time.Second

	// pongWait bounds how long a client may stay silent before the read
	// loop gives up on it; pings go out at a fraction of that.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxInboundMessageSize = 512
)

// HubOptions groups dependencies for Hub.
type HubOptions struct {
	// QueueSize is the per-client send queue depth. When the queue is
	// full the oldest queued event is dropped to make room.
	QueueSize int

	// WriteTimeout bounds a single frame write to a client.
	WriteTimeout time.Duration

	// CheckOrigin overrides the upgrader origin check. Nil allows only
	// same-origin requests (the gorilla default).
	CheckOrigin func(r *http.Request) bool

	Metrics statsd.Sink  // Optional: metrics sink (StatsD-compatible)
	Logger  *slog.Logger // Optional: structured logger
}

// Hub owns the set of connected WebSocket clients and fans events out to
// them. Per-client delivery order is FIFO in enqueue order; there is no
// ordering guarantee between clients. Broadcast never blocks the caller.
type Hub struct {
	upgrader     websocket.Upgrader
	queueSize    int
	writeTimeout time.Duration
	metrics      statsd.Sink
	logger       *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub constructs a new Hub.
func NewHub(opts HubOptions) *Hub {
	queueSize := opts.QueueSize
	if queueSize < 1 {
		queueSize = defaultQueueSize
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "ws_hub")
	}

	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
		queueSize:    queueSize,
		writeTimeout: writeTimeout,
		metrics:      opts.Metrics,
		logger:       logger,
		clients:      make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request to a WebSocket connection and registers
// the client with the hub. The connection stays open until the client
// disconnects or the hub shuts down.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		if h.logger != nil {
			h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		}
		return
	}

	c := newClient(h, conn)
	if !h.register(c) {
		_ = conn.Close()
		return
	}

	h.count("ws.connect", nil)
	go c.writePump()
	go c.readPump()
}

// Broadcast implements core.EventBroadcaster. The event is serialized once
// and enqueued onto every connected client's queue; when a queue is full
// the oldest entry is dropped and a warning is recorded.
func (h *Hub) Broadcast(event model.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("marshal event failed", "type", event.Type, "error", err)
		}
		return
	}

	for _, c := range h.snapshot() {
		if dropped := c.enqueue(payload); dropped {
			h.count("ws.dropped_events", map[string]string{"type": string(event.Type)})
			if h.logger != nil {
				h.logger.Warn("slow websocket client, dropped oldest queued event",
					"client_id", c.id, "type", event.Type)
			}
		}
	}
	h.count("ws.broadcasts", map[string]string{"type": string(event.Type)})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Shutdown disconnects every client and refuses new registrations.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

// unregister removes the client; the hub only closes clients it still owns
// so a double-unregister is harmless.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	h.mu.Unlock()

	if ok {
		c.close()
		h.count("ws.disconnect", nil)
	}
}

// snapshot copies the client set so broadcast iteration happens outside the
// lock.
func (h *Hub) snapshot() []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	return clients
}

func (h *Hub) count(name string, tags map[string]string) {
	if h.metrics == nil {
		return
	}
	h.metrics.Count(name, 1, tags)
}
