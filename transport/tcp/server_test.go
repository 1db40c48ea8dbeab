package tcp

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"chat-relay/domain/event"

	"github.com/stretchr/testify/require"
)

func nextEvent(t *testing.T, events chan event.SessionEvent) event.SessionEvent {
	t.Helper()
	select {
	case evt := <-events:
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for transport event")
		return nil
	}
}

func TestServer_ForwardsConnectionLifecycleAsEvents(t *testing.T) {
	req := require.New(t)
	events := make(chan event.SessionEvent, 16)
	server := NewServer(slog.Default(), "127.0.0.1:0", events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = server.Run(ctx) }()

	// When a client connects
	client, err := net.Dial("tcp", server.Addr().String())
	req.NoError(err)

	connected, ok := nextEvent(t, events).(event.Connected)
	req.True(ok)
	req.NotNil(connected.Sink)

	// When the client sends padded and blank lines
	_, err = client.Write([]byte("  hello \r\n\n   \nworld\n"))
	req.NoError(err)

	// Then only the trimmed, non-empty lines reach the engine, in order
	first, ok := nextEvent(t, events).(event.LineReceived)
	req.True(ok)
	req.Equal(connected.ID, first.ID)
	req.Equal("hello", first.Text)

	second, ok := nextEvent(t, events).(event.LineReceived)
	req.True(ok)
	req.Equal("world", second.Text)

	// When the client hangs up
	req.NoError(client.Close())

	disconnected, ok := nextEvent(t, events).(event.Disconnected)
	req.True(ok)
	req.Equal(connected.ID, disconnected.ID)
}

func TestServer_SinkWritesReachTheClient(t *testing.T) {
	req := require.New(t)
	events := make(chan event.SessionEvent, 16)
	server := NewServer(slog.Default(), "127.0.0.1:0", events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = server.Run(ctx) }()

	client, err := net.Dial("tcp", server.Addr().String())
	req.NoError(err)
	defer client.Close()

	connected, ok := nextEvent(t, events).(event.Connected)
	req.True(ok)

	// When the engine side delivers through the sink
	connected.Sink.Deliver("ping\n")

	buf := make([]byte, 16)
	req.NoError(client.SetReadDeadline(time.Now().Add(time.Second)))
	n, err := client.Read(buf)
	req.NoError(err)
	req.Equal("ping\n", string(buf[:n]))
}
