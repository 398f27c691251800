package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolatedHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolatedHome(t)

	settings, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".me2u", "profiles.toml"), settings.ProfilesPath)
	assert.Equal(t, time.Second, settings.FrameTimeout)
	assert.Equal(t, 10*time.Second, settings.DialTimeout)
	assert.Equal(t, "xterm", settings.WindowTerminal)
	assert.Equal(t, DefaultWindowArgs, settings.WindowArgs)
	assert.Equal(t, slog.LevelWarn, settings.LogLevel)
}

func TestLoadReadsConfigFile(t *testing.T) {
	home := isolatedHome(t)
	dir := filepath.Join(home, ".me2u")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[frame]
timeout = "250ms"

[window]
terminal = "urxvt"
args = ["-title", "{peer}", "-e", "{exe}", "window", "{peer}"]

[log]
level = "debug"
`), 0o600))

	settings, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, settings.FrameTimeout)
	assert.Equal(t, "urxvt", settings.WindowTerminal)
	assert.Equal(t, "-title", settings.WindowArgs[0])
	assert.Equal(t, slog.LevelDebug, settings.LogLevel)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	isolatedHome(t)
	t.Setenv("ME2U_DIAL_TIMEOUT", "3s")
	t.Setenv("ME2U_PROFILES_PATH", "/tmp/other.toml")

	settings, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, settings.DialTimeout)
	assert.Equal(t, "/tmp/other.toml", settings.ProfilesPath)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{name: "zero frame timeout", key: KeyFrameTimeout, val: "0s"},
		{name: "empty terminal", key: KeyWindowTerminal, val: " "},
		{name: "unknown log level", key: KeyLogLevel, val: "chatty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolatedHome(t)
			cfg := viper.New()
			cfg.Set(tt.key, tt.val)

			_, err := Load(cfg)
			require.Error(t, err)
		})
	}
}

func TestLoadMalformedConfigFile(t *testing.T) {
	home := isolatedHome(t)
	dir := filepath.Join(home, ".me2u")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0o600))

	_, err := Load(viper.New())
	require.ErrorContains(t, err, "read config file")
}
