// Package console prints session output on the main terminal.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/bnema/me2u/internal/ports"
	"github.com/charmbracelet/lipgloss"
)

type Console struct {
	mu     sync.Mutex
	out    io.Writer
	styles styles
}

var _ ports.Console = (*Console)(nil)

// New styles output for w. Colors are dropped when w is not a terminal.
func New(w io.Writer) *Console {
	return &Console{
		out:    w,
		styles: newStyles(lipgloss.NewRenderer(w)),
	}
}

func (c *Console) DailyMessage(body string) {
	c.println(c.styles.motdLabel.Render("MOTD:") + " " + c.styles.motd.Render(body))
}

func (c *Console) UserList(users []string) {
	lines := make([]string, 0, len(users)+1)
	lines = append(lines, c.styles.header.Render("All connected users:"))
	for _, user := range users {
		lines = append(lines, c.styles.user.Render(user))
	}

	c.println(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (c *Console) RecipientMissing(peer string) {
	c.println(c.styles.warning.Render(fmt.Sprintf("Recipient %s does not exist", peer)))
}

func (c *Console) UserLoggedOff(peer string) {
	c.println(c.styles.notice.Render(fmt.Sprintf("%s logged off", peer)))
}

func (c *Console) Help(text string) {
	c.println(c.styles.help.Render(text))
}

func (c *Console) InvalidInput(reason string) {
	c.println(c.styles.warning.Render(reason))
}

func (c *Console) Notice(text string) {
	c.println(c.styles.notice.Render(text))
}

func (c *Console) println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = fmt.Fprintln(c.out, line)
}
