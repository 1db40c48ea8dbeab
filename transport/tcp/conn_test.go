package tcp

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"chat-relay/domain"

	"github.com/stretchr/testify/require"
)

func TestConn_Deliver_PreservesEnqueueOrder(t *testing.T) {
	req := require.New(t)
	server, client := net.Pipe()
	conn := NewConn(domain.SessionID("s1"), server, slog.Default(), nil)

	const total = 100

	// When a burst of lines is enqueued back to back
	go func() {
		for i := 0; i < total; i++ {
			conn.Deliver(fmt.Sprintf("line-%d\n", i))
		}
	}()

	// Then the peer reads every line in enqueue order
	scanner := bufio.NewScanner(client)
	for i := 0; i < total; i++ {
		req.True(scanner.Scan())
		req.Equal(fmt.Sprintf("line-%d", i), scanner.Text())
	}

	conn.Close()
	_ = client.Close()
}

func TestConn_Close_DiscardsQueuedLines(t *testing.T) {
	req := require.New(t)
	server, client := net.Pipe()
	conn := NewConn(domain.SessionID("s1"), server, slog.Default(), nil)

	// Given lines queued behind a write nobody is reading yet
	conn.Deliver("first\n")
	conn.Deliver("second\n")
	conn.Deliver("third\n")

	// When the connection is closed
	conn.Close()

	// Then delivery after close is a no-op and the peer sees EOF
	conn.Deliver("fourth\n")
	buf := make([]byte, 64)
	_ = client.SetReadDeadline(time.Now().Add(time.Second))
	_, err := client.Read(buf)
	req.Error(err)
}

func TestConn_WriteFailure_ReportsDisconnectOnce(t *testing.T) {
	req := require.New(t)
	server, client := net.Pipe()

	var failures atomic.Int32
	conn := NewConn(domain.SessionID("s1"), server, slog.Default(),
		func(id domain.SessionID) {
			req.Equal(domain.SessionID("s1"), id)
			failures.Add(1)
		})

	// Given the peer is gone
	_ = client.Close()

	// When writes fail repeatedly
	conn.Deliver("first\n")
	require.Eventually(t, func() bool { return failures.Load() == 1 },
		time.Second, 5*time.Millisecond)
	conn.Deliver("second\n")

	// Then the disconnect path is triggered exactly once
	time.Sleep(50 * time.Millisecond)
	req.Equal(int32(1), failures.Load())
}
