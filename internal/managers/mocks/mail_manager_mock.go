package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockMailManager is a mock implementation of the MailMgr interface.
type MockMailManager struct {
	mock.Mock
}

func (m *MockMailManager) SendActivationMail(email, username, link string) error {
	args := m.Called(email, username, link)
	return args.Error(0)
}

func (m *MockMailManager) SendPasswordResetMail(email, username, link string) error {
	args := m.Called(email, username, link)
	return args.Error(0)
}

func (m *MockMailManager) SendConfirmationMail(email, username, message string) error {
	args := m.Called(email, username, message)
	return args.Error(0)
}
