// Package ws pushes live notifications to connected users. Each user has
// one topic, notifications/{userID}; a connection subscribes to its own
// topic at upgrade time and receives every notification created for that
// user while connected.
package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nutriagenda/scheduling-portal/internal/notification"
)

// Event is the wire envelope for a pushed message.
type Event struct {
	Type      string          `json:"type"`
	Topic     string          `json:"topic"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

const EventNotification = "NOTIFICATION"

// NotificationTopic names the per-user topic.
func NotificationTopic(userID uuid.UUID) string {
	return fmt.Sprintf("notifications/%s", userID)
}

// Client is one WebSocket connection.
type Client struct {
	ID    string
	Topic string
	Send  chan []byte
}

// Hub tracks connected clients per topic. All operations are safe for
// concurrent use.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // topic -> set of clients
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

// Register adds a client under its topic.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.Topic] == nil {
		h.clients[client.Topic] = make(map[*Client]struct{})
	}
	h.clients[client.Topic][client] = struct{}{}
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subscribers, ok := h.clients[client.Topic]
	if !ok {
		return
	}
	if _, ok := subscribers[client]; !ok {
		return
	}

	delete(subscribers, client)
	if len(subscribers) == 0 {
		delete(h.clients, client.Topic)
	}
	close(client.Send)
}

// Broadcast sends an event to every client subscribed to topic.
func (h *Hub) Broadcast(topic string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws: failed to marshal event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[topic] {
		select {
		case client.Send <- data:
		default:
			// Client buffer full; skip to avoid blocking.
		}
	}
}

// PublishNotification satisfies the notification service's Publisher.
func (h *Hub) PublishNotification(userID uuid.UUID, n notification.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		log.Printf("ws: failed to marshal notification %s: %v", n.ID, err)
		return
	}

	h.Broadcast(NotificationTopic(userID), Event{
		Type:      EventNotification,
		Topic:     NotificationTopic(userID),
		Timestamp: time.Now(),
		Data:      data,
	})
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subscribers := range h.clients {
		total += len(subscribers)
	}
	return total
}

// TopicCount returns the number of clients subscribed to a topic.
func (h *Hub) TopicCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}
