package runtime

import (
	"log/slog"
	"strings"
	"testing"

	"chat-relay/domain"

	"github.com/stretchr/testify/require"
)

// recordingSink captures everything delivered to one session.
type recordingSink struct {
	lines  []string
	closed bool
}

func (s *recordingSink) Deliver(line string) { s.lines = append(s.lines, line) }
func (s *recordingSink) Close()              { s.closed = true }

func (s *recordingSink) all() string { return strings.Join(s.lines, "") }

func (s *recordingSink) count(substr string) int {
	return strings.Count(s.all(), substr)
}

func TestRouter_BroadcastAll_ReachesEveryConnectedSession(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	router := NewRouter(slog.Default(), registry)

	named := &recordingSink{}
	unnamed := &recordingSink{}
	namedID, unnamedID := newID(), newID()
	registry.Add(domain.NewSession(namedID, 0), named)
	registry.Add(domain.NewSession(unnamedID, 1), unnamed)
	req.NoError(registry.ClaimName(namedID, "alice"))

	// When a server-wide announcement is broadcast
	router.BroadcastAll("alice joined the server.\n")

	// Then every live session receives it, named or not
	req.Equal([]string{"alice joined the server.\n"}, named.lines)
	req.Equal([]string{"alice joined the server.\n"}, unnamed.lines)
}

func TestRouter_BroadcastRoom_ExcludesSender(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	router := NewRouter(slog.Default(), registry)

	sender := &recordingSink{}
	member := &recordingSink{}
	outsider := &recordingSink{}
	senderID, memberID, outsiderID := newID(), newID(), newID()
	registry.Add(domain.NewSession(senderID, 0), sender)
	registry.Add(domain.NewSession(memberID, 1), member)
	registry.Add(domain.NewSession(outsiderID, 2), outsider)
	registry.JoinRoom(senderID, "lobby")
	registry.JoinRoom(memberID, "lobby")

	// When a room message is broadcast on behalf of the sender
	router.BroadcastRoom("lobby", senderID, "hi\n")

	// Then only the other members receive it
	req.Empty(sender.lines)
	req.Equal([]string{"hi\n"}, member.lines)
	req.Empty(outsider.lines)
}

func TestRouter_SendTo_SkipsDepartedSession(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	router := NewRouter(slog.Default(), registry)

	id := newID()
	sink := &recordingSink{}
	registry.Add(domain.NewSession(id, 0), sink)

	// Given the session left the arena mid-teardown
	registry.Remove(id)

	// Then delivery is silently skipped
	req.False(router.SendTo(id, "hello\n"))
	req.Empty(sink.lines)
}
