package domain

import "strings"

// Command is one parsed input line. Anything that is not a known
// slash command is chat text routed through the current context.
type Command interface {
	isCommand()
}

type JoinCommand struct {
	Room string
}

type PrivateCommand struct {
	User string
}

type LeaveCommand struct{}

type WhereAmICommand struct{}

type ListRoomsCommand struct{}

type ListUsersCommand struct{}

type ChatCommand struct {
	Text string
}

func (JoinCommand) isCommand()      {}
func (PrivateCommand) isCommand()   {}
func (LeaveCommand) isCommand()     {}
func (WhereAmICommand) isCommand()  {}
func (ListRoomsCommand) isCommand() {}
func (ListUsersCommand) isCommand() {}
func (ChatCommand) isCommand()      {}

// ParseLine maps a trimmed, non-empty input line to a Command.
// Matching is case-sensitive. Unknown slash commands fall through
// as chat text, like any other line.
func ParseLine(line string) Command {
	switch {
	case strings.HasPrefix(line, "/join "):
		return JoinCommand{Room: strings.TrimSpace(strings.TrimPrefix(line, "/join "))}
	case strings.HasPrefix(line, "/pv "):
		return PrivateCommand{User: strings.TrimSpace(strings.TrimPrefix(line, "/pv "))}
	case line == "/leave":
		return LeaveCommand{}
	case line == "/whereami":
		return WhereAmICommand{}
	case line == "/rooms":
		return ListRoomsCommand{}
	case line == "/users":
		return ListUsersCommand{}
	default:
		return ChatCommand{Text: line}
	}
}
