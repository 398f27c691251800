// Package chatwindow is the program that runs inside a conversation window.
// It talks to its parent over fd 3 (frames in) and fd 4 (frames out).
package chatwindow

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/bnema/me2u/internal/domain"
	"github.com/bnema/me2u/internal/fdpoll"
	"github.com/bnema/me2u/internal/protocol"
	"github.com/charmbracelet/lipgloss"
)

const (
	ParentReadFD  = 3
	ParentWriteFD = 4

	CloseCommand = "/close"
)

type Config struct {
	Peer       string
	FromParent protocol.Source
	ToParent   io.Writer
	Stdin      protocol.Source
	Out        io.Writer
	// FrameTimeout bounds each byte of a frame once its first byte arrived.
	FrameTimeout time.Duration
	Log          *slog.Logger
}

type window struct {
	peer     string
	parent   *protocol.FrameReader
	input    *protocol.FrameReader
	fds      []uintptr
	toParent io.Writer
	out      io.Writer
	styles   styles
	log      *slog.Logger
}

type styles struct {
	title    lipgloss.Style
	incoming lipgloss.Style
	outgoing lipgloss.Style
	warning  lipgloss.Style
}

// Run serves one conversation until the user closes it, stdin ends or the
// parent goes away. Only a broken channel is reported as an error.
func Run(cfg Config) error {
	if err := domain.ValidateUsername(cfg.Peer); err != nil {
		return fmt.Errorf("peer: %w", err)
	}

	log := cfg.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	renderer := lipgloss.NewRenderer(cfg.Out)
	w := &window{
		peer:     cfg.Peer,
		parent:   protocol.NewFrameReader(cfg.FromParent, protocol.Terminator, cfg.FrameTimeout),
		input:    protocol.NewFrameReader(cfg.Stdin, "\n", cfg.FrameTimeout),
		fds:      []uintptr{cfg.FromParent.Fd(), cfg.Stdin.Fd()},
		toParent: cfg.ToParent,
		out:      cfg.Out,
		styles: styles{
			title:    renderer.NewStyle().Bold(true),
			incoming: renderer.NewStyle().Foreground(lipgloss.Color("159")),
			outgoing: renderer.NewStyle().Foreground(lipgloss.Color("245")),
			warning:  renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		},
		log: log.With("component", "chatwindow", "peer", cfg.Peer),
	}

	w.print(w.styles.title.Render("Conversation with " + cfg.Peer))
	return w.loop()
}

func (w *window) loop() error {
	for {
		ready, err := fdpoll.Wait(w.fds, fdpoll.Forever)
		if err != nil {
			return err
		}

		if ready[0].Ready() {
			done, err := w.serviceParent()
			if done || err != nil {
				return err
			}
		}

		if ready[1].Ready() {
			done, err := w.serviceInput()
			if done || err != nil {
				return err
			}
		}
	}
}

func (w *window) serviceParent() (bool, error) {
	frame, err := w.parent.ReadFrame()
	if err != nil {
		if errors.Is(err, domain.ErrConnectionClosed) {
			w.log.Debug("parent closed the conversation")
			return true, nil
		}
		return true, fmt.Errorf("read from parent: %w", err)
	}

	msg, err := protocol.Decode(frame)
	if err != nil {
		w.log.Warn("unreadable frame from parent", "error", err)
		return false, nil
	}

	switch msg.Verb {
	case domain.VerbReceiveMessage:
		w.print(w.styles.incoming.Render("> " + msg.Body))
	case domain.VerbSendMessage:
		w.print(w.styles.outgoing.Render("< " + msg.Body))
	default:
		w.log.Warn("unexpected frame from parent", "verb", msg.Verb.String())
	}

	return false, nil
}

func (w *window) serviceInput() (bool, error) {
	line, err := w.input.ReadFrame()
	if err != nil {
		if errors.Is(err, domain.ErrConnectionClosed) {
			return true, w.sendClose()
		}
		return true, fmt.Errorf("read input: %w", err)
	}

	text := strings.TrimRight(string(line), "\r")
	switch {
	case strings.TrimSpace(text) == "":
		return false, nil
	case strings.TrimSpace(text) == CloseCommand:
		return true, w.sendClose()
	case strings.HasPrefix(text, "/"):
		w.print(w.styles.warning.Render("Invalid command"))
		return false, nil
	}

	frame, err := protocol.Encode(domain.Message{
		Verb:      domain.VerbSendMessage,
		Peer:      w.peer,
		Body:      text,
		Direction: domain.Outgoing,
	})
	if err != nil {
		w.print(w.styles.warning.Render("Invalid command"))
		return false, nil
	}

	if _, err := w.toParent.Write(frame); err != nil {
		return true, fmt.Errorf("write to parent: %w", err)
	}

	return false, nil
}

func (w *window) sendClose() error {
	frame, err := protocol.EncodeWindowClose(w.peer)
	if err != nil {
		return err
	}

	if _, err := w.toParent.Write(frame); err != nil {
		return fmt.Errorf("write to parent: %w", err)
	}

	return nil
}

func (w *window) print(line string) {
	_, _ = fmt.Fprintln(w.out, line)
}
