package profiles

import (
	"fmt"
	"net"

	"github.com/bnema/me2u/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

func renderView(profiles []domain.Profile, s styles) string {
	lines := []string{
		s.title.Render("Connection profiles"),
		s.header.Render(fmt.Sprintf("profiles: %d", len(profiles))),
	}

	if len(profiles) == 0 {
		lines = append(lines, s.empty.Render("No profiles saved. Add one with `me2u profile add`."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	nameWidth := 0
	for _, profile := range profiles {
		nameWidth = max(nameWidth, lipgloss.Width(string(profile.Name)))
	}

	for _, profile := range profiles {
		lines = append(lines, renderProfile(profile, nameWidth, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderProfile(profile domain.Profile, nameWidth int, s styles) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.name.Width(nameWidth).Render(string(profile.Name)),
		"  ",
		s.user.Render(profile.Username),
		s.address.Render("@"+net.JoinHostPort(profile.Host, profile.Port)),
	)
}
