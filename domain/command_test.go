package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLine_Commands(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		name     string
		input    string
		expected Command
	}{
		{
			name:     "Join with room name",
			input:    "/join lobby",
			expected: JoinCommand{Room: "lobby"},
		},
		{
			name:     "Private chat with user",
			input:    "/pv bob",
			expected: PrivateCommand{User: "bob"},
		},
		{
			name:     "Leave",
			input:    "/leave",
			expected: LeaveCommand{},
		},
		{
			name:     "Whereami",
			input:    "/whereami",
			expected: WhereAmICommand{},
		},
		{
			name:     "Rooms listing",
			input:    "/rooms",
			expected: ListRoomsCommand{},
		},
		{
			name:     "Users listing",
			input:    "/users",
			expected: ListUsersCommand{},
		},
		{
			name:     "Plain text is chat",
			input:    "hello there",
			expected: ChatCommand{Text: "hello there"},
		},
		{
			name:     "Unknown slash command falls through as chat",
			input:    "/dance",
			expected: ChatCommand{Text: "/dance"},
		},
		{
			name:     "Commands are case-sensitive",
			input:    "/JOIN lobby",
			expected: ChatCommand{Text: "/JOIN lobby"},
		},
		{
			name:     "Leave with trailing argument is chat",
			input:    "/leave now",
			expected: ChatCommand{Text: "/leave now"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req.Equal(tt.expected, ParseLine(tt.input))
		})
	}
}
