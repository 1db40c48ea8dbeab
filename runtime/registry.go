package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	errs "chat-relay/errors"
	"sort"
	"sync"
)

type Set map[domain.SessionID]struct{}

// RoomInfo is a read-only view of one room for listings.
type RoomInfo struct {
	Name    string
	Members int
}

// Registry is the arena of live sessions plus the two derived indexes:
// the name directory and room membership. It stores session ids, not
// connection handles, so a session can only be resolved while it is
// still in the arena.
//
// All mutation goes through the engine's single event loop; the lock
// exists for the read paths used by observability workers.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*domain.Session
	sinks    map[domain.SessionID]contract.DeliverySink
	byName   map[string]domain.SessionID
	rooms    map[string]Set
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.SessionID]*domain.Session),
		sinks:    make(map[domain.SessionID]contract.DeliverySink),
		byName:   make(map[string]domain.SessionID),
		rooms:    make(map[string]Set),
	}
}

// Add places a freshly connected session and its outbound sink in the arena.
func (r *Registry) Add(session *domain.Session, sink contract.DeliverySink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	r.sinks[session.ID] = sink
}

// Remove drops the session from the arena. Name and room indexes must
// already have been released; Remove only forgets the handle itself.
func (r *Registry) Remove(id domain.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	delete(r.sinks, id)
}

func (r *Registry) Get(id domain.SessionID) (*domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) Sink(id domain.SessionID) (contract.DeliverySink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sinks[id]
	return sink, ok
}

// ClaimName reserves a display name for the given session.
// A name belongs to at most one live session at a time.
func (r *Registry) ClaimName(id domain.SessionID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[name]; taken {
		return errs.ErrNameTaken
	}
	r.byName[name] = id
	return nil
}

// ReleaseName frees a name, but only if the directory still points at
// this exact session. The guard keeps a stale entry from clobbering a
// name that has since been claimed by someone else.
func (r *Registry) ReleaseName(id domain.SessionID, name string) {
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, ok := r.byName[name]; ok && owner == id {
		delete(r.byName, name)
	}
}

// ResolveName returns the live session currently holding a name.
func (r *Registry) ResolveName(name string) (*domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	s, ok := r.sessions[id]
	return s, ok
}

// JoinRoom adds the session to a room's member set, initializing the
// room on the fly if it does not exist yet.
func (r *Registry) JoinRoom(id domain.SessionID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[room]; !ok {
		r.rooms[room] = make(Set)
	}
	r.rooms[room][id] = struct{}{}
}

// LeaveRoom removes the session from a room's member set.
// If no one is left in the room, the room entry is removed entirely
// so empty sets don't accumulate over time.
func (r *Registry) LeaveRoom(id domain.SessionID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// RoomMembers returns the ids of every session currently in the room.
func (r *Registry) RoomMembers(room string) []domain.SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members, ok := r.rooms[room]
	if !ok {
		return nil
	}
	ids := make([]domain.SessionID, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids
}

// AllSessions returns every live session, named or not.
func (r *Registry) AllSessions() []domain.SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]domain.SessionID, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Names returns all claimed display names, sorted for stable listings.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rooms returns (name, member count) pairs, sorted by room name.
func (r *Registry) Rooms() []RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]RoomInfo, 0, len(r.rooms))
	for name, members := range r.rooms {
		infos = append(infos, RoomInfo{Name: name, Members: len(members)})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// SessionCount implements contract.SessionGauge.
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
