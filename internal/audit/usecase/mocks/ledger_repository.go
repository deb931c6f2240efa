package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/caretrail/phicore/internal/audit/domain"
)

// MockLedgerRepository is a mock implementation of usecase.LedgerRepository.
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Insert(
	ctx context.Context,
	event *auditDomain.AuditEvent,
) (uint64, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockLedgerRepository) GetTail(ctx context.Context) (*auditDomain.AuditEvent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.AuditEvent), args.Error(1)
}

func (m *MockLedgerRepository) GetRange(
	ctx context.Context,
	startPos, endPos uint64,
) ([]*auditDomain.AuditEvent, error) {
	args := m.Called(ctx, startPos, endPos)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.AuditEvent), args.Error(1)
}

func (m *MockLedgerRepository) Count(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}
