package tcp

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"strings"
	"sync"

	"chat-relay/domain"
	"chat-relay/domain/event"

	"github.com/google/uuid"
)

// Server owns the accept loop. Each accepted connection gets a stable
// uuid session id, a serialized outbound Conn, and a reader goroutine
// that forwards trimmed lines to the engine as events. The server never
// touches registries itself; everything flows through the event channel.
type Server struct {
	log    *slog.Logger
	addr   string
	events chan<- event.SessionEvent

	ready    chan struct{}
	once     sync.Once
	listener net.Listener
}

func NewServer(log *slog.Logger, addr string, events chan<- event.SessionEvent) *Server {
	return &Server{log: log, addr: addr, events: events, ready: make(chan struct{})}
}

// Addr blocks until the listener is bound and returns its address.
// Useful when the configured port is 0.
func (s *Server) Addr() net.Addr {
	<-s.ready
	return s.listener.Addr()
}

// Run accepts connections until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.once.Do(func() { close(s.ready) })

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	s.log.Info("Chat relay listening", "addr", s.addr)

	for {
		nc, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.log.Debug("Context done, stopping accept loop")
				return nil
			}
			// Let the supervisor restart the accept loop.
			return err
		}
		go s.serve(ctx, nc)
	}
}

func (s *Server) serve(ctx context.Context, nc net.Conn) {
	id := domain.SessionID(uuid.NewString())
	conn := NewConn(id, nc, s.log, func(id domain.SessionID) {
		s.push(ctx, event.Disconnected{ID: id})
	})

	if !s.push(ctx, event.Connected{ID: id, Sink: conn, RemoteAddr: nc.RemoteAddr().String()}) {
		_ = nc.Close()
		return
	}

	scanner := bufio.NewScanner(nc)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			// Empty post-trim line: re-arm input without a reply.
			continue
		}
		if !s.push(ctx, event.LineReceived{ID: id, Text: line}) {
			return
		}
	}
	// EOF and read errors both end on the same disconnect path.
	s.push(ctx, event.Disconnected{ID: id})
}

// push forwards an event unless the server is shutting down.
func (s *Server) push(ctx context.Context, evt event.SessionEvent) bool {
	select {
	case s.events <- evt:
		return true
	case <-ctx.Done():
		return false
	}
}
