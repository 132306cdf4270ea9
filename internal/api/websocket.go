package api

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboard may be served from another origin
	},
}

// Hub maintains the set of active websocket clients and broadcasts the
// dashboard stream (stats ticks, alerts, layering sweeps) to them.
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	mutex     sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast: make(chan []byte, 256),
		clients:   make(map[*websocket.Conn]bool),
	}
}

// Run delivers queued messages until Close.
func (h *Hub) Run() {
	for message := range h.broadcast {
		h.mutex.Lock()
		for client := range h.clients {
			_ = client.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[Stream] Websocket write error: %v", err)
				client.Close()
				delete(h.clients, client)
			}
		}
		h.mutex.Unlock()
	}
}

// Subscribe handles incoming websocket connections
func (h *Hub) Subscribe(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[Stream] Failed to upgrade websocket: %v", err)
		return
	}

	h.mutex.Lock()
	h.clients[conn] = true
	total := len(h.clients)
	h.mutex.Unlock()
	log.Printf("[Stream] Client connected. Total clients: %d", total)

	// Only the server talks; reading detects disconnects.
	go func() {
		defer func() {
			h.mutex.Lock()
			delete(h.clients, conn)
			total := len(h.clients)
			h.mutex.Unlock()
			conn.Close()
			log.Printf("[Stream] Client disconnected. Total clients: %d", total)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[Stream] WebSocket error: %v", err)
				}
				return
			}
		}
	}()
}

// Broadcast queues data for every connected client. A full queue drops the
// message rather than stalling the caller.
func (h *Hub) Broadcast(data []byte) {
	if len(data) == 0 {
		return
	}
	select {
	case h.broadcast <- data:
	default:
		log.Printf("[Stream] Broadcast queue full, dropping %d bytes", len(data))
	}
}

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Close stops Run. Broadcast must not be called afterwards.
func (h *Hub) Close() {
	close(h.broadcast)
}
