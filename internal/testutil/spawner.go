// Package testutil provides in-process stand-ins for conversation processes.
package testutil

import (
	"os"
	"sync"
	"testing"

	"github.com/bnema/me2u/internal/domain"
	"github.com/bnema/me2u/internal/ports"
)

// ChildEnds are the pipe ends a real conversation process would own.
type ChildEnds struct {
	FromParent *os.File
	ToParent   *os.File
}

// PipeSpawner creates the two pipes of a window without starting a process;
// the test plays the process through the child ends.
type PipeSpawner struct {
	t        *testing.T
	mu       sync.Mutex
	children map[string]ChildEnds
	spawned  []string
}

var _ ports.ConversationSpawner = (*PipeSpawner)(nil)

func NewPipeSpawner(t *testing.T) *PipeSpawner {
	return &PipeSpawner{t: t, children: map[string]ChildEnds{}}
}

func (s *PipeSpawner) Spawn(peer string) (domain.ConversationWindow, error) {
	s.t.Helper()

	toChildR, toChildW, err := os.Pipe()
	if err != nil {
		return domain.ConversationWindow{}, err
	}
	fromChildR, fromChildW, err := os.Pipe()
	if err != nil {
		_ = toChildR.Close()
		_ = toChildW.Close()
		return domain.ConversationWindow{}, err
	}

	s.t.Cleanup(func() {
		for _, f := range []*os.File{toChildR, toChildW, fromChildR, fromChildW} {
			_ = f.Close()
		}
	})

	s.mu.Lock()
	s.children[peer] = ChildEnds{FromParent: toChildR, ToParent: fromChildW}
	s.spawned = append(s.spawned, peer)
	s.mu.Unlock()

	return domain.ConversationWindow{
		Peer:     peer,
		Inbound:  fromChildR,
		Outbound: toChildW,
	}, nil
}

// Child is safe to call while another goroutine spawns.
func (s *PipeSpawner) Child(peer string) (ChildEnds, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ends, ok := s.children[peer]
	return ends, ok
}

// Spawned lists every peer a window was spawned for, in order, including
// repeats after a close.
func (s *PipeSpawner) Spawned() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.spawned...)
}
