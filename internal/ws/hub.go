package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"cohort-chat-service/internal/models"
	"cohort-chat-service/internal/observability"
)

// Broadcaster fans out message lifecycle events to a group's subscribers.
// Handlers depend on this interface so tests can substitute a fake.
type Broadcaster interface {
	BroadcastMessageCreated(groupID int, msg models.GroupMessage)
	BroadcastMessageDeleted(groupID int, messageID int)
}

// Hub maintains the in-memory topic map: one room per group id, holding
// every live connection subscribed to that group. It is constructed once
// per process and injected; there is no package-level instance. State does
// not survive a restart, clients reconcile by re-fetching messages on
// rejoin.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[int]map[*client]struct{}
	logger *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:  make(map[int]map[*client]struct{}),
		logger: logger,
	}
}

func (h *Hub) join(groupID int, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[groupID]; !ok {
		h.rooms[groupID] = make(map[*client]struct{})
	}
	h.rooms[groupID][cl] = struct{}{}
}

func (h *Hub) leave(groupID int, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(groupID, cl)
}

// leaveAll drops every subscription held by a connection. Called on
// disconnect.
func (h *Hub) leaveAll(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for groupID := range h.rooms {
		h.removeLocked(groupID, cl)
	}
}

func (h *Hub) removeLocked(groupID int, cl *client) {
	if clients, ok := h.rooms[groupID]; ok {
		delete(clients, cl)
		if len(clients) == 0 {
			delete(h.rooms, groupID)
		}
	}
}

// RoomSize reports how many connections are subscribed to a group.
func (h *Hub) RoomSize(groupID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[groupID])
}

// BroadcastMessageCreated publishes a created event to the group's topic.
func (h *Hub) BroadcastMessageCreated(groupID int, msg models.GroupMessage) {
	h.broadcast(groupID, models.GroupEvent{
		Event:   "group:message",
		Action:  models.ActionCreated,
		Message: &msg,
	})
}

// BroadcastMessageDeleted publishes a deleted event to the group's topic.
func (h *Hub) BroadcastMessageDeleted(groupID int, messageID int) {
	h.broadcast(groupID, models.GroupEvent{
		Event:     "group:message",
		Action:    models.ActionDeleted,
		MessageID: messageID,
	})
}

// broadcast delivers an event to every current subscriber, at most once,
// best effort. A failed write closes and prunes that connection only;
// remaining subscribers still receive the event.
func (h *Hub) broadcast(groupID int, event models.GroupEvent) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.rooms[groupID]))
	for cl := range h.rooms[groupID] {
		clients = append(clients, cl)
	}
	h.mu.RUnlock()

	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("marshal group event", zap.Error(err))
		return
	}

	for _, cl := range clients {
		if err := cl.write(payload); err != nil {
			h.logger.Warn("websocket write failed, dropping subscriber",
				zap.Int("group_id", groupID),
				zap.String("conn_id", cl.info.ConnID),
				zap.Error(err))
			cl.close()
			h.leave(groupID, cl)
			observability.IncBroadcastError()
			continue
		}
		observability.IncBroadcastDelivery(event.Action)
	}
}
