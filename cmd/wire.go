package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	profilesadapter "github.com/bnema/me2u/internal/adapters/render/profiles"
	tomlrepo "github.com/bnema/me2u/internal/adapters/repo/toml"
	"github.com/bnema/me2u/internal/adapters/transport/tcp"
	"github.com/bnema/me2u/internal/application"
	"github.com/bnema/me2u/internal/config"
	"github.com/bnema/me2u/internal/domain"
	"github.com/spf13/viper"
)

type app struct {
	settings      config.Settings
	profiles      *application.ProfileService
	profileRender func([]domain.Profile) (string, error)
	dial          func(ctx context.Context, host, port string, timeout time.Duration) (*os.File, error)
}

func wireApp() (*app, error) {
	settings, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	repo, err := tomlrepo.NewRepository(settings.ProfilesPath)
	if err != nil {
		return nil, fmt.Errorf("wire profile repository: %w", err)
	}

	return &app{
		settings:      settings,
		profiles:      application.NewProfileService(repo),
		profileRender: profilesadapter.Render,
		dial:          tcp.Dial,
	}, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
