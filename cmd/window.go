package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/bnema/me2u/internal/chatwindow"
	"github.com/spf13/cobra"
)

// newWindowCmd is what each conversation terminal runs. The parent passes
// the conversation pipes as fds 3 and 4.
func newWindowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:    "window PEER",
		Short:  "Run one conversation window",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fromParent, err := inheritedFile(chatwindow.ParentReadFD, "from-parent")
			if err != nil {
				return err
			}
			defer func() { _ = fromParent.Close() }()

			toParent, err := inheritedFile(chatwindow.ParentWriteFD, "to-parent")
			if err != nil {
				return err
			}
			defer func() { _ = toParent.Close() }()

			stdin, ok := cmd.InOrStdin().(*os.File)
			if !ok {
				return errors.New("window needs a terminal on stdin")
			}

			return chatwindow.Run(chatwindow.Config{
				Peer:         args[0],
				FromParent:   fromParent,
				ToParent:     toParent,
				Stdin:        stdin,
				Out:          cmd.OutOrStdout(),
				FrameTimeout: app.settings.FrameTimeout,
				Log:          newLogger(cmd.ErrOrStderr(), app.settings.LogLevel),
			})
		},
	}
}

func inheritedFile(fd uintptr, name string) (*os.File, error) {
	file := os.NewFile(fd, name)
	if file == nil {
		return nil, fmt.Errorf("descriptor %d is not available", fd)
	}
	if _, err := file.Stat(); err != nil {
		return nil, fmt.Errorf("descriptor %d was not passed by the parent: %w", fd, err)
	}

	return file, nil
}
