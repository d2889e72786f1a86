package live

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/AlibekovAA/gym-api/internal/common/logger"
	"github.com/AlibekovAA/gym-api/internal/notification/domain"
	"github.com/AlibekovAA/gym-api/internal/observability/metrics"
)

const TypeNotification = "notification"

type Message struct {
	Type    string              `json:"type"`
	Payload domain.Notification `json:"payload"`
}

// Hub fans new notifications out to every open feed connection of the
// recipient. Delivery is best effort: a client whose buffer is full is
// disconnected rather than allowed to stall publishers.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*Client]struct{}
	closed  bool
	log     *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		log:     log,
	}
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	metrics.LiveConnectionsActive.Inc()

	h.log.WithFields(context.Background(), logger.Fields{
		"user_id":     c.userID,
		"connections": len(set),
		"action":      "ws_register",
	}).Info("notification feed client registered")
	return true
}

func (h *Hub) unregister(c *Client, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, reason)
}

// removeLocked is the only place a client's send channel is closed.
func (h *Hub) removeLocked(c *Client, reason string) {
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}

	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)

	metrics.LiveConnectionsActive.Dec()
	metrics.LiveDisconnections.WithLabelValues(reason).Inc()
	h.log.WithFields(context.Background(), logger.Fields{
		"user_id": c.userID,
		"reason":  reason,
		"action":  "ws_unregister",
	}).Info("notification feed client unregistered")
}

// Publish pushes n to the recipient's open connections without blocking.
func (h *Hub) Publish(n domain.Notification) {
	payload, err := json.Marshal(Message{Type: TypeNotification, Payload: n})
	if err != nil {
		h.log.WithFields(context.Background(), logger.Fields{
			"notification_id": n.ID,
			"action":          "ws_marshal",
		}).Errorf("notification feed marshal error: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients[n.UserID] {
		select {
		case c.send <- payload:
			metrics.LiveMessagesPushed.Inc()
		default:
			metrics.LiveMessagesDropped.Inc()
			h.removeLocked(c, "slow_consumer")
		}
	}
}

func (h *Hub) Connections(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

// Shutdown closes every feed connection; later registrations are refused.
func (h *Hub) Shutdown(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	total := 0
	for _, set := range h.clients {
		for c := range set {
			h.removeLocked(c, "shutdown")
			total++
		}
	}

	h.log.WithFields(context.Background(), logger.Fields{
		"clients": total,
		"action":  "ws_hub_shutdown",
	}).Info("notification feed hub shutdown completed")
	return nil
}
