package realtime

import (
	"encoding/json"
	"sync"

	"edwin/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// clientBuffer is the number of frames queued per socket before new frames
// are dropped for that socket.
const clientBuffer = 32

// Frame is what a socket receives.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Event is a frame addressed to a set of users. It is what travels over the
// Redis channel.
type Event struct {
	Type       string               `json:"type"`
	Data       json.RawMessage      `json:"data"`
	Recipients []primitive.ObjectID `json:"recipients"`
}

// NewEvent encodes data into an Event.
func NewEvent(eventType string, data interface{}, recipients []primitive.ObjectID) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Data: raw, Recipients: recipients}, nil
}

// Client is one open socket of a user.
type Client struct {
	user primitive.ObjectID
	send chan []byte
}

// Send is drained by the socket's writer.
func (c *Client) Send() <-chan []byte { return c.send }

// Hub tracks open sockets per user and delivers events to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[primitive.ObjectID]map[*Client]struct{}
	log     logger.Logger
}

// NewHub creates an empty hub.
func NewHub(log logger.Logger) *Hub {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Hub{
		clients: make(map[primitive.ObjectID]map[*Client]struct{}),
		log:     log.WithComponent("messaging-hub"),
	}
}

// Register adds a socket for user.
func (h *Hub) Register(user primitive.ObjectID) *Client {
	c := &Client{user: user, send: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	if h.clients[user] == nil {
		h.clients[user] = make(map[*Client]struct{})
	}
	h.clients[user][c] = struct{}{}
	h.mu.Unlock()
	return c
}

// Unregister removes a socket and closes its queue.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.user]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.user)
	}
}

// Connections is the number of open sockets of user.
func (h *Hub) Connections(user primitive.ObjectID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[user])
}

// Deliver queues event on every socket of each recipient. Slow sockets
// miss the frame.
func (h *Hub) Deliver(event Event) {
	payload, err := json.Marshal(Frame{Type: event.Type, Data: event.Data})
	if err != nil {
		h.log.Errorf("failed to encode %s frame: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, user := range event.Recipients {
		for c := range h.clients[user] {
			select {
			case c.send <- payload:
			default:
				h.log.WithFields(map[string]interface{}{"user": user.Hex()}).Warn("dropping frame for slow socket")
			}
		}
	}
}
