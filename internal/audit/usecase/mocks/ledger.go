package mocks

import (
	"context"
	"iter"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/caretrail/phicore/internal/audit/domain"
)

// MockLedger is a mock implementation of usecase.Ledger. ReadRange yields
// whatever []*AuditEvent the expectation returns.
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Append(
	ctx context.Context,
	event *auditDomain.AuditEvent,
) (*auditDomain.AuditEvent, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.AuditEvent), args.Error(1)
}

func (m *MockLedger) ReadRange(
	ctx context.Context,
	start, end uint64,
) iter.Seq2[*auditDomain.AuditEvent, error] {
	args := m.Called(ctx, start, end)

	var events []*auditDomain.AuditEvent
	if args.Get(0) != nil {
		events = args.Get(0).([]*auditDomain.AuditEvent)
	}
	err := args.Error(1)

	return func(yield func(*auditDomain.AuditEvent, error) bool) {
		for _, event := range events {
			if !yield(event, nil) {
				return
			}
		}
		if err != nil {
			yield(nil, err)
		}
	}
}

func (m *MockLedger) VerifyChain(
	ctx context.Context,
	start, end uint64,
) (*auditDomain.IntegrityReport, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.IntegrityReport), args.Error(1)
}

func (m *MockLedger) Count(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}
