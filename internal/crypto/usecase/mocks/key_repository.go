// Package mocks provides mock implementations for testing crypto use cases.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/caretrail/phicore/internal/crypto/domain"
)

// MockKeyRepository is a mock implementation of KeyRepository for testing.
type MockKeyRepository struct {
	mock.Mock
}

// Create mocks the Create method of KeyRepository.
func (m *MockKeyRepository) Create(ctx context.Context, key *cryptoDomain.KeyContext) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// GetActive mocks the GetActive method of KeyRepository.
func (m *MockKeyRepository) GetActive(
	ctx context.Context,
	contextID string,
) (*cryptoDomain.KeyContext, error) {
	args := m.Called(ctx, contextID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.KeyContext), args.Error(1)
}

// GetByID mocks the GetByID method of KeyRepository.
func (m *MockKeyRepository) GetByID(
	ctx context.Context,
	keyID uuid.UUID,
) (*cryptoDomain.KeyContext, error) {
	args := m.Called(ctx, keyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.KeyContext), args.Error(1)
}

// Retire mocks the Retire method of KeyRepository.
func (m *MockKeyRepository) Retire(ctx context.Context, keyID uuid.UUID) error {
	args := m.Called(ctx, keyID)
	return args.Error(0)
}
