package mocks

import (
	"github.com/bnema/me2u/internal/ports"
	"github.com/stretchr/testify/mock"
)

type MockConsole struct {
	mock.Mock
}

var _ ports.Console = (*MockConsole)(nil)

func NewMockConsole(t testingT) *MockConsole {
	m := &MockConsole{}
	register(&m.Mock, t)
	return m
}

func (m *MockConsole) DailyMessage(body string) {
	m.Called(body)
}

func (m *MockConsole) UserList(users []string) {
	m.Called(users)
}

func (m *MockConsole) RecipientMissing(peer string) {
	m.Called(peer)
}

func (m *MockConsole) UserLoggedOff(peer string) {
	m.Called(peer)
}

func (m *MockConsole) Help(text string) {
	m.Called(text)
}

func (m *MockConsole) InvalidInput(reason string) {
	m.Called(reason)
}

func (m *MockConsole) Notice(text string) {
	m.Called(text)
}
