package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/badili/odk-dashboard3/internal/interfaces"
)

// MockDatabaseManager is a mock implementation of the DatabaseMgr interface.
type MockDatabaseManager struct {
	mock.Mock
}

func (m *MockDatabaseManager) GetPool() interfaces.PgxPoolIface {
	args := m.Called()
	return args.Get(0).(interfaces.PgxPoolIface)
}
