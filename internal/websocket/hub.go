package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ikkim/shopfront/pkg/logger"
)

const (
	// Rate limiting: messages accepted per client per second.
	maxMessagesPerSecond = 10

	EventCartUpdated = "cart_updated"
	EventError       = "error"

	messageCartRefresh = "cart_refresh"
)

// Event is every server-to-client frame.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// ClientMessage is what a client may send.
type ClientMessage struct {
	Type string `json:"type"` // cart_refresh
}

// Client is one websocket session. A user may have several devices connected.
type Client struct {
	Hub           *Hub
	Conn          *Conn
	UserID        string
	Send          chan []byte
	MessageCount  int       // messages in the current one-second window
	LastResetTime time.Time // start of the current window
	RateMu        sync.Mutex
}

func NewClient(hub *Hub, conn *Conn, userID string) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, 64),
	}
}

type userMessage struct {
	UserID  string
	Message []byte
}

// Hub fans cart events out to every connection of a user.
type Hub struct {
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *userMessage

	refresh func(userID string)

	// done is closed when Run returns; Register and Unregister stop blocking on it.
	done     chan struct{}
	stopOnce sync.Once

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *userMessage, 1024),
		done:       make(chan struct{}),
	}
}

// OnRefresh sets the handler for a client's cart_refresh request.
func (h *Hub) OnRefresh(fn func(userID string)) {
	h.mu.Lock()
	h.refresh = fn
	h.mu.Unlock()
}

// Run processes registrations and deliveries until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.stopOnce.Do(func() { close(h.done) })
			h.closeAll()
			h.drainPending()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			sessions := len(h.clients[client.UserID])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			clientList := h.clients[message.UserID]
			for _, client := range clientList {
				select {
				case client.Send <- message.Message:
				default:
					// a stalled reader is dropped instead of blocking everyone else
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"user_id": message.UserID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	clientList, ok := h.clients[client.UserID]
	found := false
	if ok {
		newList := make([]*Client, 0, len(clientList))
		for _, c := range clientList {
			if c == client {
				found = true
				continue
			}
			newList = append(newList, c)
		}
		if len(newList) == 0 {
			delete(h.clients, client.UserID)
		} else {
			h.clients[client.UserID] = newList
		}
	}
	remaining := len(h.clients[client.UserID])
	h.mu.Unlock()

	if !found {
		return
	}
	close(client.Send)
	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"user_id":            client.UserID,
		"remaining_sessions": remaining,
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, clientList := range h.clients {
		for _, c := range clientList {
			close(c.Send)
		}
		delete(h.clients, userID)
	}
}

// drainPending closes clients whose registration was queued but never processed.
func (h *Hub) drainPending() {
	for {
		select {
		case client := <-h.register:
			close(client.Send)
		case <-h.unregister:
		default:
			return
		}
	}
}

// SendToUser queues message for every connection of userID.
// Delivery is best-effort; a full queue drops the message.
func (h *Hub) SendToUser(userID string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal message", err, nil)
		return err
	}

	select {
	case h.broadcast <- &userMessage{UserID: userID, Message: data}:
		return nil
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"user_id": userID,
		})
		return nil
	}
}

// Register adds client. After shutdown the client's send channel is closed
// right away so its write pump exits.
func (h *Hub) Register(client *Client) {
	if h.stopped() {
		close(client.Send)
		return
	}
	select {
	case <-h.done:
		close(client.Send)
	case h.register <- client:
	}
}

func (h *Hub) stopped() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Unregister removes client. It never blocks once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case <-h.done:
	case h.unregister <- client:
	}
}

func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// OnlineUsers returns how many users have at least one open connection.
func (h *Hub) OnlineUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SessionCount returns how many connections userID has open.
func (h *Hub) SessionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// HandleClientMessage applies rate limiting and dispatches a client frame.
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"user_id": client.UserID,
			"count":   count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"user_id": client.UserID,
			"error":   err.Error(),
		})
		return
	}

	switch msg.Type {
	case messageCartRefresh:
		h.mu.RLock()
		refresh := h.refresh
		h.mu.RUnlock()
		if refresh != nil {
			refresh(client.UserID)
		}
	default:
		if err := h.SendToUser(client.UserID, Event{Type: EventError, Data: "unknown message type"}); err != nil {
			logger.Error("Failed to send error event", err, map[string]interface{}{
				"user_id": client.UserID,
			})
		}
	}
}
