// Package ws provides the WebSocket event hub: queue notifications are
// fanned out to connected UI clients so they can render pending-count
// badges and "saved for later" toasts in real time.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/clinikore/offlinesync/internal/logging"
	"github.com/clinikore/offlinesync/internal/queue"
	"github.com/clinikore/offlinesync/internal/uuid"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The daemon only serves the local UI
		return true
	},
}

// Client represents one WebSocket client connection.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// Hub maintains active client connections and broadcasts queue events.
type Hub struct {
	clients    map[string]*Client
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// Envelope wraps every WebSocket message.
type Envelope struct {
	Type      string      `json:"type"`
	Data      queue.Event `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// NewHub creates a Hub and starts its broadcast loop.
func NewHub() *Hub {
	hub := &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
	go hub.run()
	return hub
}

// AttachNotifier subscribes the hub to queue events.
func (h *Hub) AttachNotifier(n *queue.Notifier) {
	n.Subscribe(h.BroadcastEvent)
}

// run manages client connections and broadcasts.
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			total := len(h.clients)
			h.mu.Unlock()
			logging.Debug("WebSocket client connected",
				map[string]interface{}{"client": client.id, "total": total})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			logging.Debug("WebSocket client disconnected",
				map[string]interface{}{"client": client.id, "total": total})

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Send buffer full, drop the client
					close(client.send)
					delete(h.clients, id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastEvent fans a queue event out to all connected clients.
func (h *Hub) BroadcastEvent(event queue.Event) {
	envelope := Envelope{
		Type:      "queue." + string(event.Type),
		Data:      event,
		Timestamp: time.Now().Unix(),
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		logging.Error("Failed to marshal WebSocket envelope", err, nil)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logging.Warn("WebSocket broadcast buffer full, event dropped", nil)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS handles GET /ws: upgrades the connection and registers the client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed", err, nil)
		return
	}

	client := &Client{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, 64),
		hub:  h,
	}

	h.register <- client

	go client.writeLoop()
	go client.readLoop()
}

// writeLoop pushes broadcast messages to the connection.
func (c *Client) writeLoop() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// readLoop drains the connection to detect disconnects. Inbound messages
// are ignored; the hub is broadcast-only.
func (c *Client) readLoop() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
