package mocks

import (
	"context"

	"github.com/bnema/me2u/internal/domain"
	"github.com/bnema/me2u/internal/ports"
	"github.com/stretchr/testify/mock"
)

type MockProfileRepository struct {
	mock.Mock
}

var _ ports.ProfileRepository = (*MockProfileRepository)(nil)

func NewMockProfileRepository(t testingT) *MockProfileRepository {
	m := &MockProfileRepository{}
	register(&m.Mock, t)
	return m
}

func (m *MockProfileRepository) GetByName(ctx context.Context, name domain.ProfileName) (domain.Profile, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.Profile), args.Error(1)
}

func (m *MockProfileRepository) List(ctx context.Context) ([]domain.Profile, error) {
	args := m.Called(ctx)
	profiles, _ := args.Get(0).([]domain.Profile)
	return profiles, args.Error(1)
}

func (m *MockProfileRepository) Save(ctx context.Context, profile domain.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockProfileRepository) Delete(ctx context.Context, name domain.ProfileName) error {
	return m.Called(ctx, name).Error(0)
}
