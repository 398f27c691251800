package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type dialDoneMsg struct {
	err error
}

// dialSpinnerModel shows how much of the dial timeout has been spent.
type dialSpinnerModel struct {
	spinner spinner.Model
	address string
	timeout time.Duration
	started time.Time
	elapsed time.Duration
	dial    tea.Cmd
	err     error
	done    bool
}

func newDialSpinnerModel(address string, timeout time.Duration, started time.Time, dial tea.Cmd) dialSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return dialSpinnerModel{
		spinner: s,
		address: address,
		timeout: timeout,
		started: started,
		dial:    dial,
	}
}

func (m dialSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.dial)
}

func (m dialSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if since := msg.Time.Sub(m.started); since > m.elapsed {
			m.elapsed = since
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case dialDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m dialSpinnerModel) View() string {
	if m.done {
		return ""
	}

	label := fmt.Sprintf("Connecting to %s", m.address)
	if m.timeout > 0 {
		elapsed := min(m.elapsed, m.timeout).Truncate(time.Second)
		label += fmt.Sprintf(" (%s of %s)", elapsed, m.timeout)
	}

	return fmt.Sprintf("%s %s...", m.spinner.View(), label)
}

// runDialSpinner shows a spinner on output while dial runs. The program never
// reads input, so stdin stays free for the chat session.
func runDialSpinner(ctx context.Context, output io.Writer, address string, timeout time.Duration, dial func(context.Context, time.Duration) error) error {
	dialCmd := func() tea.Msg {
		return dialDoneMsg{err: dial(ctx, timeout)}
	}

	p := tea.NewProgram(
		newDialSpinnerModel(address, timeout, time.Now(), dialCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(dialSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
