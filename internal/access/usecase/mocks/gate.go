package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	accessDomain "github.com/caretrail/phicore/internal/access/domain"
)

// MockGate is a mock implementation of usecase.Gate.
type MockGate struct {
	mock.Mock
}

func (m *MockGate) Authorize(
	ctx context.Context,
	request *accessDomain.AccessRequest,
) (*accessDomain.Grant, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessDomain.Grant), args.Error(1)
}

func (m *MockGate) RecordResult(
	ctx context.Context,
	grant *accessDomain.Grant,
	opErr error,
) error {
	args := m.Called(ctx, grant, opErr)
	return args.Error(0)
}
