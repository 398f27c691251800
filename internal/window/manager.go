// Package window keeps one conversation process per peer.
package window

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/bnema/me2u/internal/domain"
	"github.com/bnema/me2u/internal/ports"
	"github.com/bnema/me2u/internal/protocol"
)

// Manager maps peer usernames to conversation windows. It is owned by the
// event loop goroutine and is not safe for concurrent use.
type Manager struct {
	spawner    ports.ConversationSpawner
	windows    map[string]*domain.ConversationWindow
	order      []string
	generation uint64
	log        *slog.Logger
}

var _ ports.WindowManager = (*Manager)(nil)

func NewManager(spawner ports.ConversationSpawner, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Manager{
		spawner: spawner,
		windows: map[string]*domain.ConversationWindow{},
		log:     log.With("component", "window"),
	}
}

// OpenOrGet returns the peer's window, spawning it on first use.
func (m *Manager) OpenOrGet(peer string) (*domain.ConversationWindow, error) {
	if w, ok := m.windows[peer]; ok {
		return w, nil
	}

	spawned, err := m.spawner.Spawn(peer)
	if err != nil {
		return nil, fmt.Errorf("spawn window for %s: %w", peer, err)
	}
	spawned.Peer = peer

	w := &spawned
	m.windows[peer] = w
	m.order = append(m.order, peer)
	m.generation++

	m.log.Debug("window opened", "peer", peer, "pid", w.PID)
	return w, nil
}

// Forward hands one frame to the window's process.
func (m *Manager) Forward(w *domain.ConversationWindow, raw []byte) error {
	frame := make([]byte, 0, len(raw)+len(protocol.Terminator))
	frame = append(frame, raw...)
	frame = append(frame, protocol.Terminator...)

	if _, err := w.Outbound.Write(frame); err != nil {
		return fmt.Errorf("forward to window %s: %w", w.Peer, err)
	}

	return nil
}

// Close forgets the peer's window and closes both pipe ends.
func (m *Manager) Close(peer string) error {
	w, ok := m.windows[peer]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrWindowNotFound, peer)
	}

	delete(m.windows, peer)
	m.order = slices.DeleteFunc(m.order, func(name string) bool { return name == peer })
	m.generation++

	var errs error
	if w.Outbound != nil {
		errs = errors.Join(errs, w.Outbound.Close())
	}
	if w.Inbound != nil {
		errs = errors.Join(errs, w.Inbound.Close())
	}
	if errs != nil {
		return fmt.Errorf("close window %s: %w", peer, errs)
	}

	m.log.Debug("window closed", "peer", peer)
	return nil
}

func (m *Manager) Lookup(peer string) (*domain.ConversationWindow, bool) {
	w, ok := m.windows[peer]
	return w, ok
}

// Windows returns the open windows in creation order.
func (m *Manager) Windows() []*domain.ConversationWindow {
	windows := make([]*domain.ConversationWindow, 0, len(m.order))
	for _, peer := range m.order {
		windows = append(windows, m.windows[peer])
	}
	return windows
}

// Generation changes every time a window opens or closes. The event loop
// rebuilds its descriptor set when it sees a new value.
func (m *Manager) Generation() uint64 {
	return m.generation
}

func (m *Manager) Len() int {
	return len(m.windows)
}
