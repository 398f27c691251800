package console

import "github.com/charmbracelet/lipgloss"

type styles struct {
	motdLabel lipgloss.Style
	motd      lipgloss.Style
	header    lipgloss.Style
	user      lipgloss.Style
	warning   lipgloss.Style
	notice    lipgloss.Style
	help      lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		motdLabel: r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		motd:      r.NewStyle().Foreground(lipgloss.Color("252")),
		header:    r.NewStyle().Bold(true),
		user:      r.NewStyle().Foreground(lipgloss.Color("159")).PaddingLeft(2),
		warning:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		notice:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),
		help:      r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}
