package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/bnema/me2u/internal/adapters/conversation/xterm"
	"github.com/bnema/me2u/internal/adapters/render/console"
	"github.com/bnema/me2u/internal/application"
	"github.com/bnema/me2u/internal/domain"
	"github.com/bnema/me2u/internal/eventloop"
	"github.com/bnema/me2u/internal/window"
	"github.com/spf13/cobra"
)

var errMissingTarget = errors.New("give NAME HOST PORT or --profile")

func newConnectCmd(app *app) *cobra.Command {
	var profile string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "connect [NAME HOST PORT]",
		Short: "Log in to a chat server",
		Long:  "Log in to a chat server as NAME. Type /help once logged in to list the commands.",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 3 {
				return fmt.Errorf("accepts 0 or 3 arg(s), received %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if profile == "" && len(args) == 0 {
				return errMissingTarget
			}

			resolve := application.ResolveTargetCommand{Profile: domain.ProfileName(profile)}
			if len(args) == 3 {
				resolve.Username, resolve.Host, resolve.Port = args[0], args[1], args[2]
			}

			target, err := app.profiles.Resolve(cmd.Context(), resolve)
			if err != nil {
				return err
			}

			stdin, ok := cmd.InOrStdin().(*os.File)
			if !ok {
				return errors.New("connect needs a terminal or pipe on stdin")
			}

			level := app.settings.LogLevel
			if verbose {
				level = slog.LevelDebug
			}
			log := newLogger(cmd.ErrOrStderr(), level)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runSession(ctx, cmd, app, target, stdin, log)
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "saved profile to connect with")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every protocol message")

	return cmd
}

func runSession(ctx context.Context, cmd *cobra.Command, app *app, target application.Target, stdin *os.File, log *slog.Logger) error {
	var socket *os.File
	err := runDialSpinner(ctx, cmd.ErrOrStderr(), target.Address(), app.settings.DialTimeout, func(ctx context.Context, timeout time.Duration) error {
		var dialErr error
		socket, dialErr = app.dial(ctx, target.Host, target.Port, timeout)
		return dialErr
	})
	if err != nil {
		return err
	}
	defer func() { _ = socket.Close() }()

	spawner, err := xterm.NewSpawner(xterm.Config{
		Terminal: app.settings.WindowTerminal,
		Args:     app.settings.WindowArgs,
		OnExit:   logWindowExit(log),
		Log:      log,
	})
	if err != nil {
		return fmt.Errorf("wire conversation windows: %w", err)
	}

	windows := window.NewManager(spawner, log)
	session, err := application.NewSession(application.SessionConfig{
		Username:  target.Username,
		Transport: socket,
		Windows:   windows,
		Console:   console.New(cmd.OutOrStdout()),
		Log:       log,
	})
	if err != nil {
		return err
	}

	loop, err := eventloop.New(eventloop.Config{
		Session:      session,
		Windows:      windows,
		Socket:       socket,
		Stdin:        stdin,
		FrameTimeout: app.settings.FrameTimeout,
		Log:          log,
	})
	if err != nil {
		return err
	}

	if err := session.Start(); err != nil {
		return err
	}

	log.Debug("connected", "address", target.Address(), "username", target.Username)
	return loop.Run(ctx)
}

// logWindowExit reports conversation processes that ended badly. The event
// loop sees the closed pipes and drops the window on its own.
func logWindowExit(log *slog.Logger) func(peer string, pid int, err error) {
	return func(peer string, pid int, err error) {
		if err == nil {
			log.Debug("conversation window exited", "peer", peer, "pid", pid)
			return
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.Warn("conversation window exited with failure", "peer", peer, "pid", pid, "status", exitErr.ExitCode())
			return
		}
		log.Warn("conversation window wait failed", "peer", peer, "pid", pid, "error", err)
	}
}
