package application

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bnema/me2u/internal/domain"
	"github.com/bnema/me2u/internal/ledger"
	"github.com/bnema/me2u/internal/ports"
	"github.com/bnema/me2u/internal/protocol"
)

// Session is the client side of one server connection. It decides, for each
// message, whether the current state allows it and what it triggers. A
// Session belongs to the event loop goroutine.
type Session struct {
	state     domain.ConnectionState
	username  string
	transport ports.Transport
	ledger    *ledger.Ledger
	windows   ports.WindowManager
	console   ports.Console
	log       *slog.Logger
}

type SessionConfig struct {
	Username  string
	Transport ports.Transport
	Windows   ports.WindowManager
	Console   ports.Console
	Log       *slog.Logger
}

func NewSession(cfg SessionConfig) (*Session, error) {
	if err := domain.ValidateUsername(cfg.Username); err != nil {
		return nil, err
	}
	if cfg.Transport == nil {
		return nil, errors.New("session transport is required")
	}
	if cfg.Windows == nil {
		return nil, errors.New("session window manager is required")
	}
	if cfg.Console == nil {
		return nil, errors.New("session console is required")
	}

	log := cfg.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Session{
		state:     domain.StateConnecting,
		username:  cfg.Username,
		transport: cfg.Transport,
		ledger:    ledger.New(),
		windows:   cfg.Windows,
		console:   cfg.Console,
		log:       log.With("component", "session"),
	}, nil
}

func (s *Session) State() domain.ConnectionState {
	return s.state
}

func (s *Session) Username() string {
	return s.username
}

func (s *Session) Ledger() *ledger.Ledger {
	return s.ledger
}

// Start opens the handshake by sending Connect.
func (s *Session) Start() error {
	return s.Submit(domain.Message{Verb: domain.VerbConnect, Direction: domain.Outgoing})
}

// Submit handles a message that originated locally: a typed command or text
// sent from a conversation window.
func (s *Session) Submit(msg domain.Message) error {
	if msg.Verb.ClientOriginated() || msg.Verb.Local() {
		return s.dispatch(msg)
	}

	return s.violation(msg, "only the server sends it")
}

// HandleIncoming handles one decoded frame read from the server.
func (s *Session) HandleIncoming(msg domain.Message) error {
	if msg.Direction != domain.Incoming || msg.Verb.ClientOriginated() || msg.Verb.Local() {
		return s.violation(msg, "the server may not send it")
	}

	s.log.Debug("received", "verb", msg.Verb.String(), "peer", msg.Peer, "body", msg.Body)
	return s.dispatch(msg)
}

// CloseWindow handles a window's close message. It is valid in every state
// and leaves the state untouched.
func (s *Session) CloseWindow(peer string) error {
	return s.windows.Close(peer)
}

type transitionKey struct {
	state domain.ConnectionState
	verb  domain.Verb
}

type transition func(*Session, domain.Message) error

// transitions lists every (state, verb) pair the session accepts. Anything
// else is a protocol violation.
var transitions = map[transitionKey]transition{
	{domain.StateConnecting, domain.VerbConnect}:                (*Session).sendConnect,
	{domain.StateConnecting, domain.VerbConnectAck}:             (*Session).onConnectAck,
	{domain.StateRegisteringUsername, domain.VerbUsernameTaken}: (*Session).onUsernameTaken,
	{domain.StateRegisteringUsername, domain.VerbUsernameOk}:    (*Session).onUsernameOk,
	{domain.StateLoggedInAwaitingMotd, domain.VerbDailyMessage}: (*Session).onDailyMessage,
	{domain.StateLoggedIn, domain.VerbListUsers}:                (*Session).sendRequest,
	{domain.StateLoggedIn, domain.VerbListUsersResponse}:        (*Session).onUserList,
	{domain.StateLoggedIn, domain.VerbSendMessage}:              (*Session).sendRequest,
	{domain.StateLoggedIn, domain.VerbSendAck}:                  (*Session).onSendAck,
	{domain.StateLoggedIn, domain.VerbSendRecipientMissing}:     (*Session).onRecipientMissing,
	{domain.StateLoggedIn, domain.VerbReceiveMessage}:           (*Session).onReceiveMessage,
	{domain.StateLoggedIn, domain.VerbUserLoggedOff}:            (*Session).onUserLoggedOff,
	{domain.StateLoggedIn, domain.VerbLogout}:                   (*Session).sendLogout,
	{domain.StateLoggedIn, domain.VerbHelp}:                     (*Session).onHelp,
	{domain.StateLoggedIn, domain.VerbInvalidInput}:             (*Session).onInvalidInput,
	{domain.StateQuitting, domain.VerbLogoutAck}:                (*Session).onLogoutAck,
}

// Allowed reports whether the transition table has an entry for the pair.
func Allowed(state domain.ConnectionState, verb domain.Verb) bool {
	_, ok := transitions[transitionKey{state, verb}]
	return ok
}

func (s *Session) dispatch(msg domain.Message) error {
	handle, ok := transitions[transitionKey{s.state, msg.Verb}]
	if !ok {
		return s.violation(msg, "unexpected in this state")
	}

	return handle(s, msg)
}

func (s *Session) violation(msg domain.Message, reason string) error {
	return fmt.Errorf("%w: %s %s while %s: %s", domain.ErrProtocolViolation, msg.Direction, msg.Verb, s.state, reason)
}

// matchRequest pops the ledger entry a response answers. It must run before
// any state change so that a failed match leaves the session untouched.
func (s *Session) matchRequest(msg domain.Message) (domain.Message, error) {
	request, ok := s.ledger.Match(msg.Verb)
	if !ok {
		return domain.Message{}, fmt.Errorf("%w: %w: %s while %s", domain.ErrProtocolViolation, domain.ErrUnrequestedResponse, msg.Verb, s.state)
	}

	return request, nil
}

func (s *Session) send(msg domain.Message) error {
	msg.Direction = domain.Outgoing
	frame, err := protocol.Encode(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Verb, err)
	}

	s.ledger.Push(msg)

	if _, err := s.transport.Write(frame); err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrTransport, msg.Verb, err)
	}

	s.log.Debug("sent", "verb", msg.Verb.String(), "peer", msg.Peer, "body", msg.Body)
	return nil
}

func (s *Session) sendConnect(msg domain.Message) error {
	return s.send(msg)
}

func (s *Session) sendRequest(msg domain.Message) error {
	return s.send(msg)
}

func (s *Session) sendLogout(msg domain.Message) error {
	if err := s.send(msg); err != nil {
		return err
	}

	s.console.Notice("Logging out")
	s.state = domain.StateQuitting
	return nil
}

func (s *Session) onConnectAck(msg domain.Message) error {
	if _, err := s.matchRequest(msg); err != nil {
		return err
	}

	s.state = domain.StateConnected
	if err := s.send(domain.Message{Verb: domain.VerbRegisterUsername, Peer: s.username}); err != nil {
		return err
	}
	s.state = domain.StateRegisteringUsername

	return nil
}

func (s *Session) onUsernameTaken(msg domain.Message) error {
	if _, err := s.matchRequest(msg); err != nil {
		return err
	}

	return fmt.Errorf("%w: %s", domain.ErrUsernameTaken, s.username)
}

func (s *Session) onUsernameOk(msg domain.Message) error {
	if _, err := s.matchRequest(msg); err != nil {
		return err
	}

	s.state = domain.StateLoggedInAwaitingMotd
	return nil
}

func (s *Session) onDailyMessage(msg domain.Message) error {
	s.state = domain.StateLoggedIn
	s.console.DailyMessage(msg.Body)
	return nil
}

func (s *Session) onUserList(msg domain.Message) error {
	if _, err := s.matchRequest(msg); err != nil {
		return err
	}

	s.console.UserList(msg.Users)
	return nil
}

// onSendAck shows the acknowledged text in the peer's window. The text comes
// from whichever SendMessage the ledger matched, which is not necessarily the
// one addressed to msg.Peer.
func (s *Session) onSendAck(msg domain.Message) error {
	request, err := s.matchRequest(msg)
	if err != nil {
		return err
	}

	echo, err := protocol.Format(request)
	if err != nil {
		return fmt.Errorf("format acknowledged message: %w", err)
	}

	s.deliver(msg.Peer, echo)
	return nil
}

func (s *Session) onRecipientMissing(msg domain.Message) error {
	if _, err := s.matchRequest(msg); err != nil {
		return err
	}

	s.console.RecipientMissing(msg.Peer)
	return nil
}

func (s *Session) onReceiveMessage(msg domain.Message) error {
	raw := msg.Raw
	if len(raw) == 0 {
		raw = []byte(protocol.Token(msg.Verb) + " " + msg.Peer + " " + msg.Body)
	}

	s.deliver(msg.Peer, raw)

	return s.send(domain.Message{Verb: domain.VerbReceiveAck, Peer: msg.Peer})
}

func (s *Session) onUserLoggedOff(msg domain.Message) error {
	s.console.UserLoggedOff(msg.Peer)
	return nil
}

func (s *Session) onHelp(domain.Message) error {
	s.console.Help(protocol.HelpText)
	return nil
}

func (s *Session) onInvalidInput(msg domain.Message) error {
	s.console.InvalidInput(msg.Body)
	return nil
}

// onLogoutAck ends the session. Open windows stay open.
func (s *Session) onLogoutAck(msg domain.Message) error {
	if _, err := s.matchRequest(msg); err != nil {
		return err
	}

	s.state = domain.StateTerminate
	s.console.Notice("Logged out")

	if err := s.transport.Close(); err != nil {
		return fmt.Errorf("close transport: %w", err)
	}

	return nil
}

// deliver opens or reuses the peer's window and forwards one frame. A window
// that cannot be reached is closed; the session carries on.
func (s *Session) deliver(peer string, raw []byte) {
	w, err := s.windows.OpenOrGet(peer)
	if err != nil {
		s.log.Warn("open window", "peer", peer, "error", err)
		return
	}

	if err := s.windows.Forward(w, raw); err != nil {
		s.log.Warn("window unreachable, closing it", "peer", peer, "error", err)
		if closeErr := s.windows.Close(peer); closeErr != nil {
			s.log.Warn("close window", "peer", peer, "error", closeErr)
		}
	}
}
