// Package domain contains core concepts of the chat relay.
// This file defines the Session entity and its routing context.
// No runtime, network, or UI logic should be added here.
package domain

// SessionID is the stable identity of one connection (a uuid).
// Registries key on ids, never on live handles.
type SessionID string

type ContextKind int

const (
	ContextNone ContextKind = iota
	ContextRoom
	ContextPrivate
)

// Context is a session's current message-routing scope:
// none, exactly one room, or exactly one private peer.
type Context struct {
	Kind   ContextKind
	Target string // room name or peer name, empty when Kind is ContextNone
}

func NoContext() Context {
	return Context{Kind: ContextNone}
}

func RoomContext(room string) Context {
	return Context{Kind: ContextRoom, Target: room}
}

func PrivateContext(peer string) Context {
	return Context{Kind: ContextPrivate, Target: peer}
}

// Session represents one connected client.
// Name stays empty until the client claims a free one.
// Context is the single source of truth for routing; the registry's
// room membership is a derived index kept in lock-step with it.
type Session struct {
	ID         SessionID
	Name       string
	ColorIndex int
	Context    Context
}

func NewSession(id SessionID, colorIndex int) *Session {
	return &Session{
		ID:         id,
		ColorIndex: colorIndex,
		Context:    NoContext(),
	}
}

func (s *Session) Named() bool {
	return s.Name != ""
}
