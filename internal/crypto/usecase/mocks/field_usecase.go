package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/caretrail/phicore/internal/crypto/domain"
)

// MockFieldUseCase is a mock implementation of usecase.FieldUseCase.
type MockFieldUseCase struct {
	mock.Mock
}

func (m *MockFieldUseCase) EncryptField(
	ctx context.Context,
	masterKeyChain *cryptoDomain.MasterKeyChain,
	fieldType string,
	recordContext map[string]string,
	plaintext []byte,
) (string, cryptoDomain.DataClassification, error) {
	args := m.Called(ctx, masterKeyChain, fieldType, recordContext, plaintext)
	return args.String(0), args.Get(1).(cryptoDomain.DataClassification), args.Error(2)
}

func (m *MockFieldUseCase) DecryptField(
	ctx context.Context,
	masterKeyChain *cryptoDomain.MasterKeyChain,
	fieldType string,
	recordContext map[string]string,
	encoded string,
) ([]byte, cryptoDomain.DataClassification, error) {
	args := m.Called(ctx, masterKeyChain, fieldType, recordContext, encoded)
	var plaintext []byte
	if args.Get(0) != nil {
		plaintext = args.Get(0).([]byte)
	}
	return plaintext, args.Get(1).(cryptoDomain.DataClassification), args.Error(2)
}
