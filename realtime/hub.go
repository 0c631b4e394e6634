// realtime/hub.go - In-process fan-out of progress events to live subscribers
package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"lifetracker/logger"
	"lifetracker/services"
)

const subscriberBuffer = 16

// Subscriber receives events for one user until Close is called.
type Subscriber struct {
	ID     string
	UserID string
	Events chan services.ProgressEvent

	hub  *Hub
	once sync.Once
}

// Close unregisters the subscriber and closes Events.
func (s *Subscriber) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.Events)
	})
}

// Hub delivers events to the subscribers of the event's user. Delivery never
// blocks: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscriber]struct{}
	log  *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		subs: make(map[string]map[*Subscriber]struct{}),
		log:  log.With("component", "realtime_hub"),
	}
}

func (h *Hub) Subscribe(userID string) *Subscriber {
	s := &Subscriber{
		ID:     uuid.NewString(),
		UserID: userID,
		Events: make(chan services.ProgressEvent, subscriberBuffer),
		hub:    h,
	}
	h.mu.Lock()
	set, ok := h.subs[userID]
	if !ok {
		set = make(map[*Subscriber]struct{})
		h.subs[userID] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()
	h.log.Debug("subscriber added", "user_id", userID, "subscriber", s.ID)
	return s
}

func (h *Hub) remove(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[s.UserID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.UserID)
		}
	}
}

// Broadcast delivers ev to every subscriber of ev.UserID.
func (h *Hub) Broadcast(ev services.ProgressEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[ev.UserID] {
		select {
		case s.Events <- ev:
		default:
			h.log.Warn("dropping event; subscriber buffer full", "subscriber", s.ID, "type", ev.Type)
		}
	}
}

// Emit lets the hub serve as the engine's emitter on single-instance deployments.
func (h *Hub) Emit(_ context.Context, ev services.ProgressEvent) error {
	h.Broadcast(ev)
	return nil
}

// Subscribers counts live subscribers of userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

var _ services.Emitter = (*Hub)(nil)
