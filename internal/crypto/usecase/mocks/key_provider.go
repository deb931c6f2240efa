package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/caretrail/phicore/internal/crypto/domain"
)

// MockKeyProvider is a mock implementation of usecase.KeyProvider.
type MockKeyProvider struct {
	mock.Mock
}

func (m *MockKeyProvider) ResolveActive(
	ctx context.Context,
	masterKeyChain *cryptoDomain.MasterKeyChain,
	contextID string,
) (*cryptoDomain.KeyContext, error) {
	args := m.Called(ctx, masterKeyChain, contextID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.KeyContext), args.Error(1)
}

func (m *MockKeyProvider) ResolveByID(
	ctx context.Context,
	masterKeyChain *cryptoDomain.MasterKeyChain,
	keyID uuid.UUID,
) (*cryptoDomain.KeyContext, error) {
	args := m.Called(ctx, masterKeyChain, keyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.KeyContext), args.Error(1)
}

func (m *MockKeyProvider) Rotate(
	ctx context.Context,
	masterKeyChain *cryptoDomain.MasterKeyChain,
	contextID string,
	alg cryptoDomain.Algorithm,
) (*cryptoDomain.KeyContext, error) {
	args := m.Called(ctx, masterKeyChain, contextID, alg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.KeyContext), args.Error(1)
}

func (m *MockKeyProvider) Close() {
	m.Called()
}
