package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/chapas/internal/match"
	"github.com/playmatatu/chapas/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin is checked by middleware.WebSocketCORSCheck
	},
}

// Client is one connected presentation layer.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	id   string
	send chan []byte
}

// Hub fans match output out to every connected presentation client.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run registers and removes clients until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, c := range h.clients {
				c.conn.Close()
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			log.Printf("[WS] Client %s connected", client.id)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
				log.Printf("[WS] Client %s disconnected", client.id)
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount is the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to every client, dropping it for clients that
// are not keeping up.
func (h *Hub) Broadcast(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] Client %s send buffer full, dropping message", client.id)
		}
	}
}

// Message types
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MatchStarted, Events and Snapshot make the hub a session.Sink.
func (h *Hub) MatchStarted(_ context.Context, info session.Info) {
	h.Broadcast(gin.H{"type": "match_started", "match": info})
}

func (h *Hub) Events(_ context.Context, info session.Info, events []match.Event) {
	h.Broadcast(gin.H{"type": "events", "match_id": info.ID, "events": events})
}

func (h *Hub) Snapshot(_ context.Context, info session.Info, snap match.Snapshot) {
	h.Broadcast(gin.H{"type": "snapshot", "match_id": info.ID, "snapshot": snap})
}

// Serve upgrades the request and attaches a presentation client. Input
// messages are applied to whatever match current returns.
func (h *Hub) Serve(c *gin.Context, current func() (*session.Session, error)) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		id:   uuid.New().String(),
		send: make(chan []byte, sendBuffer),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	if s, err := current(); err == nil {
		data, _ := json.Marshal(gin.H{"type": "snapshot", "match_id": s.Info().ID, "snapshot": s.Snapshot()})
		select {
		case client.send <- data:
		default:
		}
	}

	go client.writePump()
	go client.readPump(current)
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] write error for client %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] ping error for client %s: %v", c.id, err)
				return
			}
		}
	}
}

// readPump applies input messages until the connection drops.
func (c *Client) readPump(current func() (*session.Session, error)) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] unexpected close for client %s: %v", c.id, err)
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("invalid message")
			continue
		}
		c.handleMessage(msg, current)
	}
}

func (c *Client) handleMessage(msg WSMessage, current func() (*session.Session, error)) {
	s, err := current()
	if err != nil {
		c.sendError("no match running")
		return
	}

	switch msg.Type {
	case "input":
		var in session.Input
		if err := json.Unmarshal(msg.Data, &in); err != nil {
			c.sendError("invalid input data")
			return
		}
		err = s.Input(in)

	case "viewport":
		var vp match.Viewport
		if err := json.Unmarshal(msg.Data, &vp); err != nil {
			c.sendError("invalid viewport data")
			return
		}
		err = s.SetViewport(vp)

	default:
		c.sendError("unknown message type")
		return
	}

	if err != nil {
		if !errors.Is(err, session.ErrInvalidInput) {
			log.Printf("[WS] input from client %s rejected: %v", c.id, err)
		}
		c.sendError(err.Error())
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
	select {
	case c.send <- data:
	default:
	}
}
