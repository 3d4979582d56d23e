package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"nabz/internal/models"

	"github.com/gorilla/websocket"
)

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type      string      `json:"type"` // "intelligence", "auth", "ping", "error"
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Token     string      `json:"token,omitempty"` // For auth messages from client
}

// IntelligencePayload is the periodic push to connected collaborators:
// the latest snapshot plus everything derived from it.
type IntelligencePayload struct {
	Snapshot  *models.Snapshot         `json:"snapshot,omitempty"`
	Report    models.PerformanceReport `json:"report"`
	Timestamp time.Time                `json:"timestamp"`
}

// ClientConnection represents a connected WebSocket client
type ClientConnection struct {
	ID    string
	IP    string
	Conn  *websocket.Conn
	Send  chan WebSocketMessage
	Close chan bool
}

// WebSocketHub manages all connected WebSocket clients
type WebSocketHub struct {
	monitor    *Monitor
	clients    map[string]*ClientConnection
	broadcast  chan WebSocketMessage
	register   chan *ClientConnection
	unregister chan string
	mu         sync.RWMutex
	ticker     *time.Ticker
	done       chan bool
}

var wsHub *WebSocketHub

// InitWebSocketHub initializes the WebSocket hub. Pushes follow the
// monitor's collection cadence: there is nothing new to say in between.
func InitWebSocketHub(m *Monitor) *WebSocketHub {
	wsHub = &WebSocketHub{
		monitor:    m,
		clients:    make(map[string]*ClientConnection),
		broadcast:  make(chan WebSocketMessage, 256),
		register:   make(chan *ClientConnection),
		unregister: make(chan string),
		done:       make(chan bool),
	}

	go wsHub.run()

	return wsHub
}

// run manages the hub's event loop
func (h *WebSocketHub) run() {
	h.ticker = time.NewTicker(h.monitor.Interval())
	defer h.ticker.Stop()

	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("[WS] Client connected: %s (total: %d)", client.ID, len(h.clients))

		case clientID := <-h.unregister:
			h.mu.Lock()
			if client, exists := h.clients[clientID]; exists {
				delete(h.clients, clientID)
				close(client.Send)
			}
			h.mu.Unlock()
			log.Printf("[WS] Client disconnected: %s (total: %d)", clientID, len(h.clients))

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.Send <- msg:
				default:
					// Client's send channel is full, skip this message
				}
			}
			h.mu.RUnlock()

		case <-h.ticker.C:
			payload := h.gatherIntelligence()
			data, err := json.Marshal(payload)
			if err != nil {
				log.Printf("[WS] Error marshaling intelligence: %v", err)
				continue
			}

			msg := WebSocketMessage{
				Type:      "intelligence",
				Timestamp: time.Now(),
				Data:      json.RawMessage(data),
			}

			select {
			case h.broadcast <- msg:
			default:
				// Channel full, skip this broadcast
			}
		}
	}
}

// gatherIntelligence assembles the current published state
func (h *WebSocketHub) gatherIntelligence() *IntelligencePayload {
	payload := &IntelligencePayload{
		Report:    h.monitor.Report(),
		Timestamp: time.Now(),
	}
	if snap, ok := h.monitor.Snapshot(); ok {
		payload.Snapshot = &snap
	}
	return payload
}

// Register adds a new client to the hub
func (h *WebSocketHub) Register(client *ClientConnection) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *WebSocketHub) Unregister(clientID string) {
	h.unregister <- clientID
}

// GetWebSocketHub returns the WebSocket hub
func GetWebSocketHub() *WebSocketHub {
	return wsHub
}

// StopWebSocketHub gracefully stops the hub
func StopWebSocketHub() {
	if wsHub != nil {
		wsHub.done <- true
	}
}
