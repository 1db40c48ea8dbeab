package runtime

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"chat-relay/domain"
	"chat-relay/domain/event"
	errs "chat-relay/errors"
	"chat-relay/moderation"

	"github.com/abadojack/whatlanggo"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Engine is the relay's single serializing control path: one goroutine
// drains the inbound event channel and runs every session transition to
// completion before picking up the next event. That is what keeps the
// directory and room membership consistent without locks in the core
// logic; the only asynchronous work is outbound delivery, which each
// connection serializes on its own queue.
type Engine struct {
	log        *slog.Logger
	registry   *Registry
	router     *Router
	presenter  Presenter
	moderator  moderation.Moderator
	events     chan event.SessionEvent
	colorIndex int
}

func NewEngine(log *slog.Logger, registry *Registry, router *Router,
	presenter Presenter, moderator moderation.Moderator, bufferSize int) *Engine {
	return &Engine{
		log:       log,
		registry:  registry,
		router:    router,
		presenter: presenter,
		moderator: moderator,
		events:    make(chan event.SessionEvent, bufferSize),
	}
}

// Events is where the transport pushes connection lifecycle and line events.
func (e *Engine) Events() chan<- event.SessionEvent {
	return e.events
}

// Run drains the event channel until the context is canceled.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			e.log.Debug("Context done, stopping engine")
			return nil
		case evt := <-e.events:
			e.handle(evt)
		}
	}
}

func (e *Engine) handle(evt event.SessionEvent) {
	switch evt := evt.(type) {
	case event.Connected:
		e.connect(evt)
	case event.LineReceived:
		e.handleLine(evt)
	case event.Disconnected:
		e.disconnect(evt.ID)
	default:
		e.log.Warn("Unknown session event", "session", evt.SessionID())
	}
}

func (e *Engine) connect(evt event.Connected) {
	session := domain.NewSession(evt.ID, e.colorIndex)
	e.colorIndex++
	e.registry.Add(session, evt.Sink)
	evt.Sink.Deliver(e.presenter.Welcome())
	e.log.Info("Session connected", "session", evt.ID, "remote", evt.RemoteAddr)
}

func (e *Engine) handleLine(evt event.LineReceived) {
	session, ok := e.registry.Get(evt.ID)
	if !ok {
		// Line raced with the session's teardown.
		return
	}
	// The transport already trims; an empty line just re-arms input.
	if evt.Text == "" {
		return
	}
	if !session.Named() {
		e.claimName(session, evt.Text)
		return
	}
	e.dispatch(session, domain.ParseLine(evt.Text))
}

func (e *Engine) claimName(session *domain.Session, name string) {
	if err := validateName(name); err != nil {
		e.router.SendTo(session.ID, e.presenter.NameInvalid())
		return
	}
	if err := e.registry.ClaimName(session.ID, name); err != nil {
		if errors.Is(err, errs.ErrNameTaken) {
			e.router.SendTo(session.ID, e.presenter.NameTaken())
			return
		}
		e.log.Error("Name claim failed", "session", session.ID, "error", err)
		return
	}
	session.Name = name
	e.router.SendTo(session.ID, e.presenter.Greeting(session))
	e.router.BroadcastAll(e.presenter.JoinedServer(session))
	e.log.Info("Name claimed", "session", session.ID, "name", name)
}

func (e *Engine) dispatch(session *domain.Session, cmd domain.Command) {
	switch cmd := cmd.(type) {
	case domain.JoinCommand:
		e.joinRoom(session, cmd.Room)
	case domain.PrivateCommand:
		e.startPrivate(session, cmd.User)
	case domain.LeaveCommand:
		e.leaveContext(session)
		e.router.SendTo(session.ID, e.presenter.LeftContexts())
	case domain.WhereAmICommand:
		e.router.SendTo(session.ID, e.presenter.WhereAmI(session.Context))
	case domain.ListRoomsCommand:
		e.router.SendTo(session.ID, e.presenter.RoomList(e.registry.Rooms()))
	case domain.ListUsersCommand:
		e.router.SendTo(session.ID, e.presenter.UserList(e.registry.Names()))
	case domain.ChatCommand:
		e.sendText(session, cmd.Text)
	}
}

func (e *Engine) joinRoom(session *domain.Session, room string) {
	if err := validateName(room); err != nil {
		e.router.SendTo(session.ID, e.presenter.NameInvalid())
		return
	}
	e.leaveContext(session)
	e.registry.JoinRoom(session.ID, room)
	session.Context = domain.RoomContext(room)
	e.router.BroadcastRoom(room, session.ID, e.presenter.JoinedRoom(session, room))
	e.router.SendTo(session.ID, e.presenter.RoomConfirmation(room))
}

func (e *Engine) startPrivate(session *domain.Session, peer string) {
	if _, ok := e.registry.ResolveName(peer); !ok {
		e.router.SendTo(session.ID, e.presenter.UserNotFound())
		return
	}
	if peer == session.Name {
		e.router.SendTo(session.ID, e.presenter.SelfTarget())
		return
	}
	e.leaveContext(session)
	session.Context = domain.PrivateContext(peer)
	e.router.SendTo(session.ID, e.presenter.PrivateConfirmation(peer))
}

// leaveContext removes the session from its room, if any, and resets the
// context to none. It is a no-op on the room side when the session is
// already in none or private mode.
func (e *Engine) leaveContext(session *domain.Session) {
	if session.Context.Kind == domain.ContextRoom {
		room := session.Context.Target
		e.registry.LeaveRoom(session.ID, room)
		e.router.BroadcastRoom(room, session.ID, e.presenter.LeftRoom(session, room))
	}
	session.Context = domain.NoContext()
}

func (e *Engine) sendText(session *domain.Session, text string) {
	censored := e.censor(session, text)

	switch session.Context.Kind {
	case domain.ContextRoom:
		room := session.Context.Target
		e.router.BroadcastRoom(room, session.ID, e.presenter.RoomMessage(session, room, censored))
	case domain.ContextPrivate:
		// Resolution happens at send time: the peer disconnecting or the
		// name changing hands is tolerated, not structurally prevented.
		target, ok := e.registry.ResolveName(session.Context.Target)
		if !ok {
			e.router.SendTo(session.ID, e.presenter.PeerOffline())
			return
		}
		e.router.SendTo(target.ID, e.presenter.PrivateMessage(session, censored))
		e.router.SendTo(target.ID, e.presenter.PrivateNotice(session.Name))
	default:
		e.router.SendTo(session.ID, e.presenter.NoActiveContext())
	}
}

func (e *Engine) censor(session *domain.Session, text string) string {
	censored, found := e.moderator.Censor(text)
	if len(found) > 0 {
		info := whatlanggo.Detect(text)
		e.log.Warn("Censored message",
			"author", session.Name,
			"lang", info.Lang.Iso6391(),
			"words", len(found))
	}
	return censored
}

// disconnect runs the full cleanup path for one session. It is safe to
// call more than once: after the first pass the session is gone from the
// arena and every later call returns immediately.
func (e *Engine) disconnect(id domain.SessionID) {
	session, ok := e.registry.Get(id)
	if !ok {
		return
	}
	sink, _ := e.registry.Sink(id)

	e.registry.ReleaseName(id, session.Name)
	e.leaveContext(session)
	e.registry.Remove(id)

	if sink != nil {
		// Queued but unsent lines are discarded with the connection.
		sink.Close()
	}
	if session.Named() {
		e.router.BroadcastAll(e.presenter.LeftServer(session))
	}
	e.log.Info("Session disconnected", "session", id, "name", session.Name)
}

// validateName checks a candidate display or room name: one word of at
// most 32 characters that cannot be mistaken for a command.
func validateName(name string) error {
	if strings.HasPrefix(name, "/") {
		return errs.ErrNameInvalid
	}
	if err := validate.Var(name, "required,max=32,excludesall=0x20"); err != nil {
		return errs.ErrNameInvalid
	}
	return nil
}
