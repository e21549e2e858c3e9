package hub

import "sync"

// Session is one live viewer connection registered with the hub.
type Session interface {
	ID() string
	// Send queues an event for delivery and reports false when the session is
	// no longer writable. Unwritable sessions are presumed mid-teardown; their
	// own disconnect path removes them.
	Send(Event) bool
}

// Hub tracks connected viewer sessions and fans events out to them.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// New creates an empty hub.
func New() *Hub {
	return &Hub{sessions: make(map[string]Session)}
}

// Register adds a session and broadcasts the updated viewer count.
func (h *Hub) Register(s Session) {
	h.mu.Lock()
	h.sessions[s.ID()] = s
	count := len(h.sessions)
	h.mu.Unlock()

	h.Broadcast(viewerCountEvent(count))
}

// Unregister removes a session and broadcasts the updated viewer count.
// Removing an unknown ID is a no-op.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	if _, ok := h.sessions[id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, id)
	count := len(h.sessions)
	h.mu.Unlock()

	h.Broadcast(viewerCountEvent(count))
}

// Count reports the number of registered sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Broadcast delivers the event to every registered session that is still
// writable. Unwritable sessions are skipped silently.
func (h *Hub) Broadcast(e Event) {
	h.mu.RLock()
	sessions := make([]Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		s.Send(e)
	}
}
