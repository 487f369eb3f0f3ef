package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"focusflow/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// EventTasksChanged tells a client to refetch its task list.
const EventTasksChanged = "tasks.changed"

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one open change-feed connection of a user.
type Client struct {
	UserID int
	Conn   Conn
	Mu     sync.Mutex
}

type event struct {
	userID  int
	payload []byte
}

// Hub fans task change events out to the connections of the affected user.
type Hub struct {
	clients    map[int]map[*Client]bool
	broadcast  chan event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int]map[*Client]bool),
		broadcast:  make(chan event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Join adds the client to the hub. It reports false once the hub has stopped.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Leave removes the client and closes its connection.
func (h *Hub) Leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Notify queues an event for userID. It never blocks: when the queue is full
// the event is dropped and clients catch up on their next fetch.
func (h *Hub) Notify(userID int, eventType string) {
	payload, err := json.Marshal(map[string]string{"type": eventType})
	if err != nil {
		return
	}

	select {
	case h.broadcast <- event{userID: userID, payload: payload}:
	default:
		logger.SystemLogger.Warn("Change feed queue full, event dropped", zap.Int("user_id", userID))
	}
}

// Run owns the client set until ctx is done, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for client := range set {
					_ = client.Conn.Close()
				}
			}
			h.clients = make(map[int]map[*Client]bool)
			return
		case client := <-h.register:
			set, ok := h.clients[client.UserID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.UserID] = set
			}
			set[client] = true
		case client := <-h.unregister:
			h.remove(client)
		case ev := <-h.broadcast:
			for client := range h.clients[ev.userID] {
				client.Mu.Lock()
				err := client.Conn.WriteMessage(websocket.TextMessage, ev.payload)
				client.Mu.Unlock()
				if err != nil {
					h.remove(client)
				}
			}
		}
	}
}

// remove may run while ranging over the same set; deleting during range is safe.
func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.UserID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.UserID)
	}
	_ = client.Conn.Close()
}
