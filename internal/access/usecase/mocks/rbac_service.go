package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	accessDomain "github.com/caretrail/phicore/internal/access/domain"
)

// MockRBACService is a mock implementation of usecase.RBACService.
type MockRBACService struct {
	mock.Mock
}

func (m *MockRBACService) Check(
	ctx context.Context,
	request *accessDomain.AccessRequest,
) (bool, string, error) {
	args := m.Called(ctx, request)
	return args.Bool(0), args.String(1), args.Error(2)
}
