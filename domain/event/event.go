package event

import (
	"chat-relay/contract"
	"chat-relay/domain"
)

// SessionEvent is one unit of work for the relay engine. The engine
// handles events one at a time, which is what serializes every state
// transition of the shared registries.
type SessionEvent interface {
	SessionID() domain.SessionID
}

// Connected is emitted by the transport when a connection is accepted.
type Connected struct {
	ID         domain.SessionID
	Sink       contract.DeliverySink
	RemoteAddr string
}

// LineReceived carries one trimmed, non-empty input line.
type LineReceived struct {
	ID   domain.SessionID
	Text string
}

// Disconnected is emitted on reader EOF, read error, or write failure.
// It may be emitted more than once for the same session; the cleanup
// path is idempotent.
type Disconnected struct {
	ID domain.SessionID
}

func (e Connected) SessionID() domain.SessionID    { return e.ID }
func (e LineReceived) SessionID() domain.SessionID { return e.ID }
func (e Disconnected) SessionID() domain.SessionID { return e.ID }
