package runtime

import (
	"bytes"
	"fmt"
	"strconv"

	"chat-relay/domain"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// namePalette is cycled over connecting sessions so each display name
// keeps a stable color for the lifetime of its connection.
var namePalette = []color.Color{
	color.FgCyan,
	color.FgGreen,
	color.FgYellow,
	color.FgMagenta,
	color.FgBlue,
}

// Presenter builds every user-facing line. Wording and decoration are
// deliberately kept out of the engine; only the occurrence of each
// announcement matters to the protocol.
type Presenter struct{}

func NewPresenter() Presenter {
	return Presenter{}
}

// ColoredName renders a session's display name in its assigned color.
func (Presenter) ColoredName(s *domain.Session) string {
	return namePalette[s.ColorIndex%len(namePalette)].Render(s.Name)
}

func (Presenter) Welcome() string {
	return "Welcome! Please enter your name: "
}

func (p Presenter) Greeting(s *domain.Session) string {
	return fmt.Sprintf("Hi %s! Commands: /join <room>, /pv <user>, /leave, /whereami, /rooms, /users\n",
		p.ColoredName(s))
}

func (Presenter) NameTaken() string {
	return "Name already taken. Try another: "
}

func (Presenter) NameInvalid() string {
	return "Names are one word of at most 32 characters and cannot start with '/'. Try another: "
}

func (p Presenter) JoinedServer(s *domain.Session) string {
	return fmt.Sprintf("%s joined the server.\n", p.ColoredName(s))
}

func (p Presenter) LeftServer(s *domain.Session) string {
	return fmt.Sprintf("%s left the server.\n", p.ColoredName(s))
}

func (p Presenter) JoinedRoom(s *domain.Session, room string) string {
	return fmt.Sprintf("%s joined room %s.\n", p.ColoredName(s), room)
}

func (p Presenter) LeftRoom(s *domain.Session, room string) string {
	return fmt.Sprintf("%s left room %s.\n", p.ColoredName(s), room)
}

func (Presenter) RoomConfirmation(room string) string {
	return fmt.Sprintf("You are now in room %s. Type to chat here.\n", room)
}

func (Presenter) PrivateConfirmation(peer string) string {
	return fmt.Sprintf("Private chat with %s started. Type to chat.\n", peer)
}

func (Presenter) LeftContexts() string {
	return "You left all contexts. Mode: none.\n"
}

func (p Presenter) RoomMessage(sender *domain.Session, room, text string) string {
	return fmt.Sprintf("%s [%s]: %s\n", p.ColoredName(sender), room, text)
}

func (p Presenter) PrivateMessage(sender *domain.Session, text string) string {
	return fmt.Sprintf("%s (PV): %s\n", p.ColoredName(sender), text)
}

func (Presenter) PrivateNotice(senderName string) string {
	return fmt.Sprintf("You have new message in pv %s\n", senderName)
}

func (Presenter) UserNotFound() string {
	return "User not found.\n"
}

func (Presenter) SelfTarget() string {
	return "You cannot start PV with yourself.\n"
}

func (Presenter) PeerOffline() string {
	return "User went offline.\n"
}

func (Presenter) NoActiveContext() string {
	return "You are not in a room or pv. Use /join <room> or /pv <user>\n"
}

func (Presenter) WhereAmI(ctx domain.Context) string {
	switch ctx.Kind {
	case domain.ContextRoom:
		return fmt.Sprintf("You are in room: %s\n", ctx.Target)
	case domain.ContextPrivate:
		return fmt.Sprintf("You are in pv with: %s\n", ctx.Target)
	default:
		return "You are in: none\n"
	}
}

// RoomList renders the (room, member count) pairs as an aligned table.
func (Presenter) RoomList(rooms []RoomInfo) string {
	rows := lo.Map(rooms, func(info RoomInfo, _ int) []string {
		return []string{info.Name, strconv.Itoa(info.Members)}
	})
	return "Rooms:\n" + renderTable([]string{"Room", "Users"}, rows)
}

// UserList renders all claimed names as an aligned table.
func (Presenter) UserList(names []string) string {
	rows := lo.Map(names, func(name string, _ int) []string {
		return []string{name}
	})
	return "Users:\n" + renderTable([]string{"Name"}, rows)
}

func renderTable(header []string, rows [][]string) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.AppendBulk(rows)
	table.Render()
	return buf.String()
}
