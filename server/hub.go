package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocket message types
const (
	MessageTypeProgress  = "progress"
	MessageTypeStatus    = "status"
	MessageTypeComplete  = "complete"
	MessageTypeError     = "error"
	MessageTypeCancelled = "cancelled"
)

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type      string      `json:"type"`
	JobID     string      `json:"jobId,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// ProgressUpdate is the per-call progress frame broadcast over WebSocket
// while a job is running.
type ProgressUpdate struct {
	JobID          string  `json:"jobId"`
	Status         string  `json:"status"`
	Progress       int     `json:"progress"` // 0-100
	CurrentStep    string  `json:"currentStep,omitempty"`
	CompletedCalls int     `json:"completedCalls"`
	TotalCalls     int     `json:"totalCalls"`
	ElapsedTime    float64 `json:"elapsedTime"` // seconds
}

// Hub fans benchmark progress messages out to connected WebSocket clients.
type Hub struct {
	clients map[*websocket.Conn]bool
	mutex   sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool)}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = true
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// BroadcastMessage sends raw JSON to every connected client. Clients that
// fail to accept the write are dropped.
func (h *Hub) BroadcastMessage(data []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is handled by the CORS middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the connection and keeps it registered until the client
// goes away. The read loop only consumes control frames; progress flows one
// way, server to client.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		AppLogger.Error("WebSocket upgrade failed: %v", err)
		return
	}
	h.register(conn)
	defer h.unregister(conn)

	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
