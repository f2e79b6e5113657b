package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one connected socket. A client with a nil tenant (platform
// super admins) receives the events of every tenant.
type Client struct {
	conn     Conn
	tenantID uuid.UUID
}

func NewClient(conn Conn, tenantID uuid.UUID) *Client {
	return &Client{conn: conn, tenantID: tenantID}
}

func (c *Client) wants(tenantID uuid.UUID) bool {
	return c.tenantID == uuid.Nil || c.tenantID == tenantID
}

type message struct {
	tenantID uuid.UUID
	payload  []byte
}

type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
	mutex      sync.RWMutex
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the client set until ctx is cancelled, then closes every socket.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				_ = client.conn.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.log.Debug("ws client connected", zap.String("tenant_id", client.tenantID.String()))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				_ = client.conn.Close()
			}
			h.mutex.Unlock()

		case msg := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if !client.wants(msg.tenantID) {
					continue
				}
				if err := client.conn.WriteMessage(websocket.TextMessage, msg.payload); err != nil {
					_ = client.conn.Close()
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Register hands client to Run. Once Run has stopped the socket is closed
// instead; register is unbuffered so a send only succeeds while Run receives.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		_ = client.conn.Close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues event for the clients of tenantID. It never blocks: when
// the queue is full the event is dropped and logged.
func (h *Hub) Publish(tenantID uuid.UUID, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("ws event marshal failed", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- message{tenantID: tenantID, payload: payload}:
	default:
		h.log.Warn("ws broadcast queue full, event dropped", zap.String("tenant_id", tenantID.String()))
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
