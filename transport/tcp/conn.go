// Package tcp is the line transport: it accepts connections, turns the
// byte stream into trimmed text lines for the engine, and serializes
// outbound writes per connection.
package tcp

import (
	"io"
	"log/slog"
	"net"
	"sync"

	"chat-relay/domain"
)

// Conn wraps one accepted connection with a serialized outbound queue.
//
// Deliver never blocks the caller: it enqueues the line and starts a
// drain only when no write is in flight for this connection. Without
// that discipline two overlapping writes to the same socket could
// interleave partial data. Lines reach the peer in enqueue order; a
// write failure reports the session for disconnect exactly once.
type Conn struct {
	id        domain.SessionID
	nc        net.Conn
	log       *slog.Logger
	onFailure func(domain.SessionID)

	mu       sync.Mutex
	queue    []string
	inFlight bool
	closed   bool
	failed   bool
}

func NewConn(id domain.SessionID, nc net.Conn, log *slog.Logger,
	onFailure func(domain.SessionID)) *Conn {
	return &Conn{id: id, nc: nc, log: log, onFailure: onFailure}
}

func (c *Conn) ID() domain.SessionID {
	return c.id
}

// Deliver implements contract.DeliverySink.
func (c *Conn) Deliver(line string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.queue = append(c.queue, line)
	if c.inFlight {
		c.mu.Unlock()
		return
	}
	c.inFlight = true
	c.mu.Unlock()

	go c.drain()
}

// drain writes queued lines one at a time until the queue is empty or
// the connection is gone, then marks the connection idle.
func (c *Conn) drain() {
	for {
		c.mu.Lock()
		if c.closed || len(c.queue) == 0 {
			c.inFlight = false
			c.mu.Unlock()
			return
		}
		line := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()

		if _, err := io.WriteString(c.nc, line); err != nil {
			c.log.Debug("Write failed", "session", c.id, "err", err)
			c.fail()
			return
		}
	}
}

// fail reports the broken connection to the engine at most once.
// Writes are never retried: a transport failure is fatal to this
// session only.
func (c *Conn) fail() {
	c.mu.Lock()
	alreadyFailed := c.failed
	c.failed = true
	c.inFlight = false
	c.queue = nil
	c.mu.Unlock()

	if !alreadyFailed && c.onFailure != nil {
		c.onFailure(c.id)
	}
}

// Close implements contract.DeliverySink. Queued but unsent lines are
// discarded silently; no delivery confirmation is ever surfaced.
func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.queue = nil
	c.mu.Unlock()

	_ = c.nc.Close()
}
