// Package mocks provides mock implementations for testing database-dependent code.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTxManager is a mock implementation of database.TxManager for testing.
//
// When the configured return value is nil, the transactional function is
// executed directly against the same context, so use case logic inside the
// transaction still runs under test.
type MockTxManager struct {
	mock.Mock
}

// WithTx mocks transactional execution.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}
