package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/caretrail/phicore/internal/audit/domain"
)

// MockEventBus is a mock implementation of usecase.EventBus.
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(
	ctx context.Context,
	event *auditDomain.AuditEvent,
) (*auditDomain.AuditEvent, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.AuditEvent), args.Error(1)
}
