package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bnema/me2u/internal/protocol"
	"github.com/stretchr/testify/assert"
)

func TestConsoleDailyMessage(t *testing.T) {
	var out bytes.Buffer
	New(&out).DailyMessage("welcome")

	assert.Equal(t, "MOTD: welcome\n", out.String())
}

func TestConsoleUserListOnePerLine(t *testing.T) {
	var out bytes.Buffer
	New(&out).UserList([]string{"alice", "carol"})

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "All connected users:", strings.TrimSpace(lines[0]))
	assert.Equal(t, "alice", strings.TrimSpace(lines[1]))
	assert.Equal(t, "carol", strings.TrimSpace(lines[2]))
}

func TestConsoleNotices(t *testing.T) {
	tests := []struct {
		name  string
		print func(*Console)
		want  string
	}{
		{name: "recipient missing", print: func(c *Console) { c.RecipientMissing("eve") }, want: "Recipient eve does not exist"},
		{name: "user logged off", print: func(c *Console) { c.UserLoggedOff("bob") }, want: "bob logged off"},
		{name: "invalid input", print: func(c *Console) { c.InvalidInput("Invalid user input") }, want: "Invalid user input"},
		{name: "notice", print: func(c *Console) { c.Notice("Logged out") }, want: "Logged out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			tt.print(New(&out))
			assert.Equal(t, tt.want+"\n", out.String())
		})
	}
}

func TestConsoleHelpListsEveryCommand(t *testing.T) {
	var out bytes.Buffer
	New(&out).Help(protocol.HelpText)

	for _, cmd := range []string{"/help", "/logout", "/listu", "/chat <to> <msg>"} {
		assert.Contains(t, out.String(), cmd)
	}
}
