package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/caretrail/phicore/internal/audit/domain"
)

// MockVerifier is a mock implementation of usecase.Verifier.
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(
	ctx context.Context,
	start, end uint64,
) (*auditDomain.IntegrityReport, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.IntegrityReport), args.Error(1)
}
