package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/swiftcheck/backend/internal/models"
)

const (
	// PingInterval and PongWait are used for heartbeat (seconds).
	PingInterval = 30
	PongWait     = 60

	// EventSnapshot carries the full ordered attendee collection.
	EventSnapshot = "attendees_snapshot"
	// EventConfirmation carries a generated check-in confirmation message.
	EventConfirmation = "check_in_confirmation"
)

// Publisher publishes an event to Redis so other instances rebroadcast it to
// their own clients.
type Publisher interface {
	Publish(event string, payload []byte) error
}

// Hub maintains the set of dashboard WebSocket connections and broadcasts
// attendee snapshots and confirmation events. Every accepted write on any
// instance reaches every connected client: locally via Broadcast, across
// instances via the Redis publisher.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	snapshot func() []models.Attendee
	logger   *zap.Logger
	redis    Publisher
}

// NewHub creates a new WebSocket hub. redisPub may be nil for single-instance
// deployments.
func NewHub(logger *zap.Logger, redisPub Publisher) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
		redis:   redisPub,
	}
}

// SetSnapshotSource sets the provider of the latest snapshot, delivered to
// each client immediately on connect so the dashboard never starts empty.
func (h *Hub) SetSnapshotSource(fn func() []models.Attendee) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshot = fn
}

// Register adds a client and pushes the current snapshot to it.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	snap := h.snapshot
	h.mu.Unlock()

	if snap != nil {
		data, err := json.Marshal(snap())
		if err == nil {
			c.send <- WSMessage{Event: EventSnapshot, Data: data}
		}
	}
	h.logger.Debug("dashboard client connected", zap.String("client_id", c.ID))
}

// Unregister removes a client, releasing its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	h.mu.Unlock()
	h.logger.Debug("dashboard client disconnected", zap.String("client_id", c.ID))
}

// Broadcast sends a message to all local clients.
func (h *Hub) Broadcast(event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip; the next snapshot supersedes this one
		}
	}
}

// PublishSnapshot broadcasts a snapshot locally and publishes it to Redis for
// the other instances. Implements the attendee service's SnapshotPublisher.
func (h *Hub) PublishSnapshot(snapshot []models.Attendee) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	h.Broadcast(EventSnapshot, json.RawMessage(data))
	if h.redis != nil {
		_ = h.redis.Publish(EventSnapshot, data)
	}
}

// ClientCount returns the number of connected dashboard clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
