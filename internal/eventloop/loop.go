// Package eventloop multiplexes the server socket, the user's terminal and
// every conversation window on a single goroutine.
package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bnema/me2u/internal/domain"
	"github.com/bnema/me2u/internal/fdpoll"
	"github.com/bnema/me2u/internal/protocol"
)

// Session is the state machine driven by the loop.
type Session interface {
	State() domain.ConnectionState
	HandleIncoming(msg domain.Message) error
	Submit(msg domain.Message) error
	CloseWindow(peer string) error
}

// Windows exposes the open conversation windows.
type Windows interface {
	Windows() []*domain.ConversationWindow
	Lookup(peer string) (*domain.ConversationWindow, bool)
	Generation() uint64
}

type Config struct {
	Session Session
	Windows Windows
	Socket  protocol.Source
	Stdin   protocol.Source
	// FrameTimeout bounds each byte of a frame once its first byte arrived.
	FrameTimeout time.Duration
	Log          *slog.Logger
}

type sourceKind int

const (
	sourceWake sourceKind = iota
	sourceSocket
	sourceStdin
	sourceWindow
)

type entry struct {
	kind   sourceKind
	fd     uintptr
	window *domain.ConversationWindow
}

type Loop struct {
	session      Session
	windows      Windows
	socket       *protocol.FrameReader
	socketFD     uintptr
	stdin        *protocol.FrameReader
	stdinFD      uintptr
	frameTimeout time.Duration
	log          *slog.Logger

	entries    []entry
	fds        []uintptr
	built      bool
	generation uint64
	withStdin  bool
	rebuilds   int
}

func New(cfg Config) (*Loop, error) {
	if cfg.Session == nil || cfg.Windows == nil {
		return nil, errors.New("event loop needs a session and a window manager")
	}
	if cfg.Socket == nil || cfg.Stdin == nil {
		return nil, errors.New("event loop needs a socket and stdin")
	}

	log := cfg.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Loop{
		session:      cfg.Session,
		windows:      cfg.Windows,
		socket:       protocol.NewFrameReader(cfg.Socket, protocol.Terminator, cfg.FrameTimeout),
		socketFD:     cfg.Socket.Fd(),
		stdin:        protocol.NewFrameReader(cfg.Stdin, "\n", cfg.FrameTimeout),
		stdinFD:      cfg.Stdin.Fd(),
		frameTimeout: cfg.FrameTimeout,
		log:          log.With("component", "eventloop"),
	}, nil
}

// Run services ready descriptors until the session terminates, a fatal error
// occurs or ctx is canceled. A terminated session returns nil.
func (l *Loop) Run(ctx context.Context) error {
	wakeR, wakeW, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("create wake pipe: %w", err)
	}
	defer func() {
		_ = wakeR.Close()
		_ = wakeW.Close()
	}()

	stop := context.AfterFunc(ctx, func() {
		_, _ = wakeW.Write([]byte{0})
	})
	defer stop()

	wakeFD := wakeR.Fd()

	for {
		if l.session.State() == domain.StateTerminate {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		l.rebuildIfDirty(wakeFD)

		ready, err := fdpoll.Wait(l.fds, fdpoll.Forever)
		if err != nil {
			return fmt.Errorf("wait for input: %w", err)
		}

		if err := l.service(ready); err != nil {
			return err
		}
	}
}

// rebuildIfDirty recomputes the descriptor set when a window opened or
// closed, or when stdin became eligible or ineligible.
func (l *Loop) rebuildIfDirty(wakeFD uintptr) {
	withStdin := l.session.State() == domain.StateLoggedIn
	generation := l.windows.Generation()

	if l.built && generation == l.generation && withStdin == l.withStdin {
		return
	}

	entries := []entry{
		{kind: sourceWake, fd: wakeFD},
		{kind: sourceSocket, fd: l.socketFD},
	}
	if withStdin {
		entries = append(entries, entry{kind: sourceStdin, fd: l.stdinFD})
	}
	for _, w := range l.windows.Windows() {
		entries = append(entries, entry{kind: sourceWindow, fd: w.Inbound.Fd(), window: w})
	}

	fds := make([]uintptr, len(entries))
	for i, e := range entries {
		fds[i] = e.fd
	}

	l.entries = entries
	l.fds = fds
	l.built = true
	l.generation = generation
	l.withStdin = withStdin
	l.rebuilds++

	l.log.Debug("descriptor set rebuilt", "descriptors", len(fds), "stdin", withStdin)
}

// service handles ready sources in priority order: socket, then stdin, then
// windows in creation order.
func (l *Loop) service(ready []fdpoll.Readiness) error {
	for i, e := range l.entries {
		if !ready[i].Ready() {
			continue
		}

		var err error
		switch e.kind {
		case sourceWake:
			continue
		case sourceSocket:
			err = l.serviceSocket()
		case sourceStdin:
			if l.session.State() != domain.StateLoggedIn {
				continue
			}
			err = l.serviceStdin()
		case sourceWindow:
			err = l.serviceWindow(e.window)
		}
		if err != nil {
			return err
		}

		if l.session.State() == domain.StateTerminate {
			return nil
		}
	}

	return nil
}

func (l *Loop) serviceSocket() error {
	frame, err := l.socket.ReadFrame()
	if err != nil {
		return fmt.Errorf("read from server: %w", err)
	}

	msg, err := protocol.Decode(frame)
	if err != nil {
		return fmt.Errorf("decode server frame %q: %w", frame, err)
	}

	return l.session.HandleIncoming(msg)
}

func (l *Loop) serviceStdin() error {
	line, err := l.stdin.ReadFrame()
	if err != nil {
		if errors.Is(err, domain.ErrConnectionClosed) {
			return domain.ErrInputClosed
		}
		return fmt.Errorf("read input: %w", err)
	}

	return l.session.Submit(protocol.ParseUserInput(string(line)))
}

func (l *Loop) serviceWindow(w *domain.ConversationWindow) error {
	// The window may have been closed earlier in this pass.
	if current, ok := l.windows.Lookup(w.Peer); !ok || current != w {
		return nil
	}

	frame, err := protocol.NewFrameReader(w.Inbound, protocol.Terminator, l.frameTimeout).ReadFrame()
	if err != nil {
		l.log.Warn("window went away without closing", "peer", w.Peer, "error", err)
		return l.closeWindow(w.Peer)
	}

	event, err := protocol.DecodeWindow(frame)
	if err != nil {
		l.log.Warn("dropping unreadable window frame", "peer", w.Peer, "error", err)
		return nil
	}

	switch event.Kind {
	case protocol.WindowClose:
		return l.closeWindow(w.Peer)
	default:
		return l.session.Submit(event.Message)
	}
}

func (l *Loop) closeWindow(peer string) error {
	if err := l.session.CloseWindow(peer); err != nil {
		if errors.Is(err, domain.ErrWindowNotFound) {
			return nil
		}
		l.log.Warn("close window", "peer", peer, "error", err)
	}

	return nil
}
