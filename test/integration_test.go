package test

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"chat-relay/moderation"
	"chat-relay/runtime"
	"chat-relay/transport/tcp"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// startRelay wires the full stack on an ephemeral port and returns its address.
func startRelay(t *testing.T) string {
	t.Helper()
	color.Disable()

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := runtime.NewRegistry()
	router := runtime.NewRouter(log, registry)
	moderator, err := moderation.NewModerator([]string{"viper"}, '*', log)
	require.NoError(t, err)

	engine := runtime.NewEngine(log, registry, router, runtime.NewPresenter(), moderator, 64)
	server := tcp.NewServer(log, "127.0.0.1:0", engine.Events())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = engine.Run(ctx) }()
	go func() { _ = server.Run(ctx) }()

	return server.Addr().String()
}

// readUntil accumulates connection output until the expected substring
// shows up. Prompts are not newline-terminated, so reading by lines
// would hang on them.
func readUntil(t *testing.T, conn net.Conn, substr string) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var out strings.Builder
	buf := make([]byte, 512)
	for {
		if strings.Contains(out.String(), substr) {
			return out.String()
		}
		n, err := conn.Read(buf)
		require.NoError(t, err, "waiting for %q, got so far: %q", substr, out.String())
		out.Write(buf[:n])
	}
}

func send(t *testing.T, conn net.Conn, line string) {
	t.Helper()
	_, err := fmt.Fprintf(conn, "%s\n", line)
	require.NoError(t, err)
}

func TestRelay_RoomChatOverRealSockets(t *testing.T) {
	req := require.New(t)
	addr := startRelay(t)

	// Given alice and bob connected with claimed names
	alice, err := net.Dial("tcp", addr)
	req.NoError(err)
	defer alice.Close()
	readUntil(t, alice, "enter your name")
	send(t, alice, "alice")
	readUntil(t, alice, "Hi alice!")

	bob, err := net.Dial("tcp", addr)
	req.NoError(err)
	defer bob.Close()
	readUntil(t, bob, "enter your name")
	send(t, bob, "bob")
	readUntil(t, bob, "Hi bob!")

	// And both sitting in the lobby
	send(t, alice, "/join lobby")
	readUntil(t, alice, "You are now in room lobby")
	send(t, bob, "/join lobby")
	readUntil(t, bob, "You are now in room lobby")
	readUntil(t, alice, "bob joined room lobby")

	// When alice chats
	send(t, alice, "hi")

	// Then bob receives the tagged line
	readUntil(t, bob, "alice [lobby]: hi")

	// When bob hangs up
	req.NoError(bob.Close())

	// Then alice is told about both departures
	out := readUntil(t, alice, "bob left the server.")
	req.Contains(out, "bob left room lobby.")
}

func TestRelay_PrivateChatAndCensorOverRealSockets(t *testing.T) {
	req := require.New(t)
	addr := startRelay(t)

	alice, err := net.Dial("tcp", addr)
	req.NoError(err)
	defer alice.Close()
	readUntil(t, alice, "enter your name")
	send(t, alice, "alice")
	readUntil(t, alice, "Hi alice!")

	bob, err := net.Dial("tcp", addr)
	req.NoError(err)
	defer bob.Close()
	readUntil(t, bob, "enter your name")
	send(t, bob, "bob")
	readUntil(t, bob, "Hi bob!")

	// When alice opens a private chat and sends a line with a censored word
	send(t, alice, "/pv bob")
	readUntil(t, alice, "Private chat with bob started")
	send(t, alice, "you viper")

	// Then bob receives the masked message plus the notice
	out := readUntil(t, bob, "You have new message in pv alice")
	req.Contains(out, "alice (PV): you *****")
}

func TestRelay_NameConflictOverRealSockets(t *testing.T) {
	req := require.New(t)
	addr := startRelay(t)

	alice, err := net.Dial("tcp", addr)
	req.NoError(err)
	defer alice.Close()
	readUntil(t, alice, "enter your name")
	send(t, alice, "alice")
	readUntil(t, alice, "Hi alice!")

	intruder, err := net.Dial("tcp", addr)
	req.NoError(err)
	defer intruder.Close()
	readUntil(t, intruder, "enter your name")

	// When a second client claims the same name
	send(t, intruder, "alice")

	// Then it is prompted to retry and can claim another
	readUntil(t, intruder, "Name already taken")
	send(t, intruder, "carol")
	readUntil(t, intruder, "Hi carol!")
}
