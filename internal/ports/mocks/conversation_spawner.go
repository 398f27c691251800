package mocks

import (
	"github.com/bnema/me2u/internal/domain"
	"github.com/bnema/me2u/internal/ports"
	"github.com/stretchr/testify/mock"
)

type MockConversationSpawner struct {
	mock.Mock
}

var _ ports.ConversationSpawner = (*MockConversationSpawner)(nil)

func NewMockConversationSpawner(t testingT) *MockConversationSpawner {
	m := &MockConversationSpawner{}
	register(&m.Mock, t)
	return m
}

func (m *MockConversationSpawner) Spawn(peer string) (domain.ConversationWindow, error) {
	args := m.Called(peer)
	return args.Get(0).(domain.ConversationWindow), args.Error(1)
}
