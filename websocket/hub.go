package websocket

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskpulse/taskpulse_backend/models"
)

// Client represents a connected WebSocket consumer. A user may hold several
// connections (multiple tabs, devices), each with its own connection id.
type Client struct {
	ID     string
	UserID primitive.ObjectID
	Conn   *websocket.Conn

	mu sync.Mutex // serializes writes; replay and fanout may write concurrently
}

// WriteJSON writes v to the client's connection, serialized against
// concurrent writers
func (c *Client) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(v)
}

// Hub maintains the set of connected clients keyed by user and forwards
// notifications to them. Delivery is best effort: a user with no open
// connection simply sees the notification on their next poll.
type Hub struct {
	clients    map[primitive.ObjectID]map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[string]*Client)
			}
			h.clients[client.UserID][client.ID] = client
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[client.UserID]; ok {
				if _, ok := conns[client.ID]; ok {
					delete(conns, client.ID)
					if len(conns) == 0 {
						delete(h.clients, client.UserID)
					}
				}
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client and closes its connection
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// SendToUser writes the notification to every open connection of the user.
// It returns an error when the user has no connection on this instance.
func (h *Hub) SendToUser(userID primitive.ObjectID, notification models.Notification) error {
	h.mu.RLock()
	conns := make([]*Client, 0, len(h.clients[userID]))
	for _, client := range h.clients[userID] {
		conns = append(conns, client)
	}
	h.mu.RUnlock()

	if len(conns) == 0 {
		return fmt.Errorf("user %s not connected", userID.Hex())
	}

	for _, client := range conns {
		if err := client.WriteJSON(notification); err != nil {
			// The read loop will notice the broken connection and
			// unregister the client.
			continue
		}
	}

	return nil
}

// Deliver implements the notification sink for single-instance deployments
// without Redis: writes land straight on local connections.
func (h *Hub) Deliver(ctx context.Context, notification *models.Notification) {
	_ = h.SendToUser(notification.UserID, *notification)
}
