package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// client is one connected WebSocket peer. Writes go through the send queue
// so the hub never blocks on a slow connection; the write pump is the only
// goroutine that touches the connection for writes.
type client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn

	mu   sync.Mutex
	send chan []byte
	done bool
}

func newClient(h *Hub, conn *websocket.Conn) *client {
	return &client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.queueSize),
	}
}

// enqueue adds a payload to the send queue, dropping the oldest queued
// payload when the queue is full. Returns true when a drop happened.
func (c *client) enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return false
	}

	select {
	case c.send <- payload:
		return false
	default:
	}

	// Queue full: evict the oldest entry, then retry once. The retry
	// cannot block because this is the only writer under the lock.
	dropped := false
	select {
	case <-c.send:
		dropped = true
	default:
	}
	select {
	case c.send <- payload:
	default:
	}
	return dropped
}

// close shuts the send queue; the write pump drains what is left and then
// closes the connection.
func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return
	}
	c.done = true
	close(c.send)
}

// writePump delivers queued payloads and keepalive pings to the peer.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				_ = c.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(websocket.TextMessage, payload); err != nil {
				c.hub.unregister(c)
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.hub.unregister(c)
				return
			}
		}
	}
}

func (c *client) write(messageType int, payload []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeTimeout))
	return c.conn.WriteMessage(messageType, payload)
}

// readPump discards inbound frames; the channel is broadcast-only. It exists
// to notice disconnects and answer pings, and unregisters the client when
// the connection drops.
func (c *client) readPump() {
	defer c.hub.unregister(c)

	c.conn.SetReadLimit(maxInboundMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
