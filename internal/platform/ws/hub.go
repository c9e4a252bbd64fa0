// Package ws pushes front-desk change events (queue admissions, status
// changes, appointment updates) to connected dashboard clients over
// WebSockets. The dashboard still polls; the push is advisory.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Event represents a real-time notification sent to dashboard clients.
type Event struct {
	Type       string          `json:"type"`
	Resource   string          `json:"resource"`
	ResourceID string          `json:"resource_id,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// NewEvent builds an event with the timestamp set to now.
func NewEvent(eventType, resource, resourceID string) Event {
	return Event{
		Type:       eventType,
		Resource:   resource,
		ResourceID: resourceID,
		Timestamp:  time.Now(),
	}
}

// Client represents a single WebSocket connection.
type Client struct {
	ID   string
	Send chan []byte
}

// Hub tracks connected clients and fans events out to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  zerolog.Logger
}

// NewHub creates a Hub ready to manage WebSocket clients.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
}

// Broadcast sends an event to every connected client. Clients whose send
// buffer is full are skipped rather than blocking the caller.
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Msg("marshal websocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tighten in production.
	},
}

// Handler handles HTTP-to-WebSocket upgrades.
type Handler struct {
	hub *Hub
}

// NewHandler creates a handler bound to the given Hub.
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// RegisterRoutes registers the WebSocket endpoint on the provided Echo group.
func (wsh *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/ws", wsh.HandleConnect)
}

// HandleConnect upgrades an HTTP connection to WebSocket, registers the
// client with the hub, and starts read/write pumps.
func (wsh *Handler) HandleConnect(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		ID:   uuid.New().String(),
		Send: make(chan []byte, 256),
	}
	wsh.hub.Register(client)

	go wsh.writePump(client, conn)
	go wsh.readPump(client, conn)

	return nil
}

// readPump drains inbound frames until the peer goes away. Clients do not
// send anything the server acts on.
func (wsh *Handler) readPump(client *Client, conn *gorillawebsocket.Conn) {
	defer func() {
		wsh.hub.Unregister(client)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump writes messages from the Send channel to the connection.
func (wsh *Handler) writePump(client *Client, conn *gorillawebsocket.Conn) {
	defer conn.Close()

	for message := range client.Send {
		if err := conn.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			break
		}
	}
}
