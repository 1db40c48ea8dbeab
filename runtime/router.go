package runtime

import (
	"chat-relay/domain"
	"log/slog"
)

// Router resolves a send request into concrete delivery targets and
// enqueues the line on each one.
//
// Delivery is best-effort fan-out with no guarantees regarding
// acknowledgment, durability, or retries; each target gets an
// independent enqueue and a dead target never blocks the others.
type Router struct {
	log      *slog.Logger
	registry *Registry
}

func NewRouter(log *slog.Logger, registry *Registry) *Router {
	return &Router{log: log, registry: registry}
}

// BroadcastAll delivers a line to every connected session, named or not.
// Used for server-wide join/leave announcements.
func (r *Router) BroadcastAll(line string) {
	for _, id := range r.registry.AllSessions() {
		r.SendTo(id, line)
	}
}

// BroadcastRoom delivers a line to every member of a room except the sender.
func (r *Router) BroadcastRoom(room string, except domain.SessionID, line string) {
	for _, id := range r.registry.RoomMembers(room) {
		if id == except {
			continue
		}
		r.SendTo(id, line)
	}
}

// SendTo enqueues a line for a single session. A session that has left
// the arena mid-teardown is simply skipped.
func (r *Router) SendTo(id domain.SessionID, line string) bool {
	sink, ok := r.registry.Sink(id)
	if !ok {
		r.log.Debug("Delivery target gone, skipping", "session", id)
		return false
	}
	sink.Deliver(line)
	return true
}
