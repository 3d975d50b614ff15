package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const sendBuffer = 16

// Client is one connection subscribed to a class. All writes go through its
// own goroutine so a slow peer never blocks a broadcast.
type Client struct {
	conn    *websocket.Conn
	classID string
	send    chan interface{}

	mu     sync.Mutex
	closed bool
}

// Send queues a payload. It reports false when the buffer is full or the client is gone.
func (c *Client) Send(v interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- v:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Hub fans class events out to connected clients.
type Hub struct {
	mu      sync.RWMutex
	classes map[string]map[*Client]struct{}
	log     zerolog.Logger
}

// NewHub creates an empty Hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		classes: make(map[string]map[*Client]struct{}),
		log:     log.With().Str("component", "ws_hub").Logger(),
	}
}

// Register subscribes conn to a class and starts its writer. The writer exits,
// and the connection is closed, after Unregister.
func (h *Hub) Register(conn *websocket.Conn, classID string) *Client {
	c := &Client{conn: conn, classID: classID, send: make(chan interface{}, sendBuffer)}

	h.mu.Lock()
	set, ok := h.classes[classID]
	if !ok {
		set = make(map[*Client]struct{})
		h.classes[classID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	return c
}

// Unregister removes a client and stops its writer. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set, ok := h.classes[c.classID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.classes, c.classID)
		}
	}
	h.mu.Unlock()
	c.close()
}

// HasSubscribers reports whether any client watches the class.
func (h *Hub) HasSubscribers(classID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.classes[classID]) > 0
}

// Broadcast queues v for every client of the class. Clients whose buffer is
// full are dropped and must reconnect.
func (h *Hub) Broadcast(classID string, v interface{}) int {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.classes[classID]))
	for c := range h.classes[classID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range clients {
		if c.Send(v) {
			delivered++
			continue
		}
		h.log.Warn().Str("class_id", classID).Msg("Dropping slow client")
		h.Unregister(c)
	}
	return delivered
}

func (h *Hub) writePump(c *Client) {
	defer c.conn.Close()
	for v := range c.send {
		if err := WriteTyped(c.conn, v); err != nil {
			h.log.Debug().Err(err).Str("class_id", c.classID).Msg("Write failed")
			h.Unregister(c)
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}
