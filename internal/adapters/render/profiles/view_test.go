package profiles

import (
	"strings"
	"testing"

	"github.com/bnema/me2u/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderProfiles(t *testing.T) {
	output, err := Render([]domain.Profile{
		{Name: "home", Host: "chat.local", Port: "7777", Username: "carol"},
		{Name: "workplace", Host: "::1", Port: "9000", Username: "cbrown"},
	})

	require.NoError(t, err)
	assert.Contains(t, output, "profiles: 2")
	assert.Contains(t, output, "carol@chat.local:7777")
	assert.Contains(t, output, "cbrown@[::1]:9000")

	var homeLine string
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "home") {
			homeLine = line
		}
	}
	assert.True(t, strings.HasPrefix(homeLine, "home       carol"), "names are padded to a common width: %q", homeLine)
}

func TestRenderNoProfiles(t *testing.T) {
	output, err := Render(nil)

	require.NoError(t, err)
	assert.Contains(t, output, "profiles: 0")
	assert.Contains(t, output, "No profiles saved.")
}
