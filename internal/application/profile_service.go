package application

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/bnema/me2u/internal/domain"
	"github.com/bnema/me2u/internal/ports"
)

type ProfileService struct {
	repo ports.ProfileRepository
}

func NewProfileService(repo ports.ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

func (s *ProfileService) Add(ctx context.Context, cmd AddProfileCommand) (domain.Profile, error) {
	profile := domain.Profile{
		Name:     cmd.Name,
		Host:     cmd.Host,
		Port:     cmd.Port,
		Username: cmd.Username,
	}
	profile.Normalize()

	if err := profile.Validate(); err != nil {
		return domain.Profile{}, fmt.Errorf("validate profile: %w", err)
	}

	if err := s.repo.Save(ctx, profile); err != nil {
		return domain.Profile{}, fmt.Errorf("save profile: %w", err)
	}

	return profile, nil
}

func (s *ProfileService) Remove(ctx context.Context, name domain.ProfileName) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}

	return nil
}

// List returns profiles sorted by name.
func (s *ProfileService) List(ctx context.Context) ([]domain.Profile, error) {
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	slices.SortFunc(profiles, func(a, b domain.Profile) int {
		return strings.Compare(string(a.Name), string(b.Name))
	})

	return profiles, nil
}

// Resolve builds a connection target. Without a profile every explicit field
// is required; with one, explicit fields replace the saved values.
func (s *ProfileService) Resolve(ctx context.Context, cmd ResolveTargetCommand) (Target, error) {
	profile := domain.Profile{Name: "command line"}

	if cmd.Profile != "" {
		saved, err := s.repo.GetByName(ctx, cmd.Profile)
		if err != nil {
			return Target{}, fmt.Errorf("get profile by name: %w", err)
		}
		profile = saved
	}

	if cmd.Username != "" {
		profile.Username = cmd.Username
	}
	if cmd.Host != "" {
		profile.Host = cmd.Host
	}
	if cmd.Port != "" {
		profile.Port = cmd.Port
	}
	profile.Normalize()

	if err := profile.Validate(); err != nil {
		return Target{}, fmt.Errorf("resolve connection target: %w", err)
	}

	return Target{Username: profile.Username, Host: profile.Host, Port: profile.Port}, nil
}
