// Package config resolves runtime settings from ~/.me2u/config.toml and
// ME2U_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	KeyProfilesPath   = "profiles.path"
	KeyFrameTimeout   = "frame.timeout"
	KeyDialTimeout    = "dial.timeout"
	KeyWindowTerminal = "window.terminal"
	KeyWindowArgs     = "window.args"
	KeyLogLevel       = "log.level"

	configName   = "config"
	configType   = "toml"
	configDir    = ".me2u"
	profilesFile = "profiles.toml"
	envPrefix    = "ME2U"
)

// DefaultWindowArgs is handed to the terminal emulator. {peer} and {exe}
// are substituted per window.
var DefaultWindowArgs = []string{"-T", "{peer}", "-e", "{exe}", "window", "{peer}"}

type Settings struct {
	ProfilesPath   string
	FrameTimeout   time.Duration
	DialTimeout    time.Duration
	WindowTerminal string
	WindowArgs     []string
	LogLevel       slog.Level
}

// Load applies defaults to cfg, reads the config file if there is one and
// returns the resolved settings.
func Load(cfg *viper.Viper) (Settings, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Settings{}, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDir))
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	cfg.SetDefault(KeyProfilesPath, filepath.Join(homeDir, configDir, profilesFile))
	cfg.SetDefault(KeyFrameTimeout, time.Second)
	cfg.SetDefault(KeyDialTimeout, 10*time.Second)
	cfg.SetDefault(KeyWindowTerminal, "xterm")
	cfg.SetDefault(KeyWindowArgs, DefaultWindowArgs)
	cfg.SetDefault(KeyLogLevel, "warn")

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Settings{}, fmt.Errorf("read config file: %w", err)
		}
	}

	settings := Settings{
		ProfilesPath:   cfg.GetString(KeyProfilesPath),
		FrameTimeout:   cfg.GetDuration(KeyFrameTimeout),
		DialTimeout:    cfg.GetDuration(KeyDialTimeout),
		WindowTerminal: strings.TrimSpace(cfg.GetString(KeyWindowTerminal)),
		WindowArgs:     cfg.GetStringSlice(KeyWindowArgs),
	}

	if err := settings.LogLevel.UnmarshalText([]byte(cfg.GetString(KeyLogLevel))); err != nil {
		return Settings{}, fmt.Errorf("parse %s: %w", KeyLogLevel, err)
	}

	if err := settings.validate(); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

func (s Settings) validate() error {
	if s.ProfilesPath == "" {
		return errors.New("profiles path is empty")
	}
	if s.FrameTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyFrameTimeout, s.FrameTimeout)
	}
	if s.DialTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyDialTimeout, s.DialTimeout)
	}
	if s.WindowTerminal == "" {
		return fmt.Errorf("%s is empty", KeyWindowTerminal)
	}

	return nil
}
