// Package xterm starts one terminal emulator per conversation. The child
// reads frames on fd 3 and writes frames on fd 4.
package xterm

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/bnema/me2u/internal/domain"
	"github.com/bnema/me2u/internal/ports"
)

const (
	PeerPlaceholder       = "{peer}"
	ExecutablePlaceholder = "{exe}"
)

type Config struct {
	Terminal string
	// Args may contain {peer} and {exe}.
	Args []string
	// Executable replaces {exe}. Empty means the running binary.
	Executable string
	// OnExit runs on the reaper goroutine once a child has been waited for.
	// When set it replaces the default debug log line.
	OnExit func(peer string, pid int, err error)
	Log    *slog.Logger
}

type Spawner struct {
	terminal   string
	args       []string
	executable string
	onExit     func(peer string, pid int, err error)
	log        *slog.Logger
	reapers    sync.WaitGroup
}

var _ ports.ConversationSpawner = (*Spawner)(nil)

func NewSpawner(cfg Config) (*Spawner, error) {
	if strings.TrimSpace(cfg.Terminal) == "" {
		return nil, errors.New("terminal command is required")
	}

	executable := cfg.Executable
	if executable == "" {
		self, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve executable: %w", err)
		}
		executable = self
	}

	log := cfg.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Spawner{
		terminal:   cfg.Terminal,
		args:       append([]string(nil), cfg.Args...),
		executable: executable,
		onExit:     cfg.OnExit,
		log:        log.With("component", "xterm"),
	}, nil
}

func (s *Spawner) Spawn(peer string) (domain.ConversationWindow, error) {
	toChildR, toChildW, err := os.Pipe()
	if err != nil {
		return domain.ConversationWindow{}, fmt.Errorf("create parent-to-child pipe: %w", err)
	}
	fromChildR, fromChildW, err := os.Pipe()
	if err != nil {
		closeAll(toChildR, toChildW)
		return domain.ConversationWindow{}, fmt.Errorf("create child-to-parent pipe: %w", err)
	}

	cmd := exec.Command(s.terminal, s.expandArgs(peer)...)
	cmd.ExtraFiles = []*os.File{toChildR, fromChildW}

	if err := cmd.Start(); err != nil {
		closeAll(toChildR, toChildW, fromChildR, fromChildW)
		return domain.ConversationWindow{}, fmt.Errorf("start %s: %w", s.terminal, err)
	}

	// The child holds its own copies now. Keeping ours open would hide its
	// exit from the parent's reads.
	closeAll(toChildR, fromChildW)

	pid := cmd.Process.Pid
	s.log.Debug("conversation process started", "peer", peer, "pid", pid)

	s.reapers.Add(1)
	go s.reap(cmd, peer, pid)

	return domain.ConversationWindow{
		Peer:     peer,
		Inbound:  fromChildR,
		Outbound: toChildW,
		PID:      pid,
	}, nil
}

// Wait blocks until every started process has been reaped.
func (s *Spawner) Wait() {
	s.reapers.Wait()
}

func (s *Spawner) reap(cmd *exec.Cmd, peer string, pid int) {
	defer s.reapers.Done()

	err := cmd.Wait()
	if s.onExit != nil {
		s.onExit(peer, pid, err)
		return
	}

	s.log.Debug("conversation process exited", "peer", peer, "pid", pid, "error", err)
}

func (s *Spawner) expandArgs(peer string) []string {
	replacer := strings.NewReplacer(PeerPlaceholder, peer, ExecutablePlaceholder, s.executable)

	args := make([]string, len(s.args))
	for i, arg := range s.args {
		args[i] = replacer.Replace(arg)
	}
	return args
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
