package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog/log"
)

// Actions carried in Event.Action
const (
	ActionProductCreated   = "product_created"
	ActionProductUpdated   = "product_updated"
	ActionProductDeleted   = "product_deleted"
	ActionProductsImported = "products_imported"
)

// Event is the JSON frame pushed to every connected client.
type Event struct {
	Type    string                 `json:"type"`
	Action  string                 `json:"action"`
	Product map[string]interface{} `json:"product,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Message string                 `json:"message"`
}

type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	mutex      sync.Mutex

	// closed when Run returns
	done chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Publish queues ev for broadcast without blocking the caller; a full queue drops it.
func (h *Hub) Publish(ev Event) {
	if ev.Type == "" {
		ev.Type = "stock_update"
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		log.Warn().Err(err).Str("action", ev.Action).Msg("ws: marshal event")
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
		log.Warn().Str("action", ev.Action).Msg("ws: broadcast queue full, event dropped")
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

// join hands conn to Run. It reports false once the hub has stopped.
func (h *Hub) join(conn *websocket.Conn) bool {
	select {
	case h.Register <- conn:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(conn *websocket.Conn) {
	select {
	case h.Unregister <- conn:
	case <-h.done:
	}
}

// Run serves register/unregister/broadcast until ctx is cancelled, then closes all clients.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			close(h.done)
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			log.Debug().Msg("ws: client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
