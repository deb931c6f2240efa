package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	auditDomain "github.com/caretrail/phicore/internal/audit/domain"
	auditUseCase "github.com/caretrail/phicore/internal/audit/usecase"
	cryptoDomain "github.com/caretrail/phicore/internal/crypto/domain"
	cryptoService "github.com/caretrail/phicore/internal/crypto/service"
)

// fieldUseCase implements FieldUseCase by combining the field registry, the
// key provider, and the envelope service. Envelope authentication failures
// are recorded in the audit trail through bus.
type fieldUseCase struct {
	keyProvider KeyProvider
	envelope    cryptoService.Envelope
	bus         auditUseCase.EventBus
}

// EncryptField seals a plaintext field value into the persisted envelope
// format under the active key of the field's context.
func (f *fieldUseCase) EncryptField(
	ctx context.Context,
	masterKeyChain *cryptoDomain.MasterKeyChain,
	fieldType string,
	recordContext map[string]string,
	plaintext []byte,
) (string, cryptoDomain.DataClassification, error) {
	field, err := cryptoDomain.LookupField(fieldType)
	if err != nil {
		return "", "", err
	}

	key, err := f.keyProvider.ResolveActive(ctx, masterKeyChain, field.KeyContext)
	if err != nil {
		return "", field.Classification, err
	}

	envelope, err := f.envelope.Encrypt(plaintext, fieldType, recordContext, key)
	if err != nil {
		return "", field.Classification, err
	}

	encoded, err := envelope.Marshal()
	if err != nil {
		return "", field.Classification, err
	}

	return encoded, field.Classification, nil
}

// DecryptField opens a persisted envelope, resolving the exact key it was
// sealed under. The field type and record context must reproduce the sealed
// AAD; mismatches surface as cryptoDomain.ErrIntegrityCheckFailed.
func (f *fieldUseCase) DecryptField(
	ctx context.Context,
	masterKeyChain *cryptoDomain.MasterKeyChain,
	fieldType string,
	recordContext map[string]string,
	encoded string,
) ([]byte, cryptoDomain.DataClassification, error) {
	field, err := cryptoDomain.LookupField(fieldType)
	if err != nil {
		return nil, "", err
	}

	envelope, err := cryptoDomain.UnmarshalEncryptedField(encoded)
	if err != nil {
		return nil, field.Classification, err
	}

	key, err := f.keyProvider.ResolveByID(ctx, masterKeyChain, envelope.KeyID)
	if err != nil {
		return nil, field.Classification, err
	}

	plaintext, err := f.envelope.Decrypt(envelope, fieldType, recordContext, key)
	if err != nil {
		if errors.Is(err, cryptoDomain.ErrIntegrityCheckFailed) {
			err = f.recordIntegrityViolation(ctx, fieldType, envelope.KeyID, err)
		}
		return nil, field.Classification, err
	}

	return plaintext, field.Classification, nil
}

// recordIntegrityViolation flags a failed envelope authentication in the
// audit trail. A ciphertext that no longer authenticates is a security
// event, not just a bad request; the decrypt failure is returned either way.
func (f *fieldUseCase) recordIntegrityViolation(
	ctx context.Context,
	fieldType string,
	keyID uuid.UUID,
	cause error,
) error {
	violation := &auditDomain.AuditEvent{
		EventType:          auditDomain.EventTypeSecurityViolation,
		ActorID:            "envelope-service",
		ResourceType:       "phi_field",
		ResourceID:         fieldType,
		Purpose:            "operations",
		Outcome:            auditDomain.OutcomeFailed,
		DataClassification: "internal",
		Details: map[string]any{
			"field_type": fieldType,
			"key_id":     keyID.String(),
		},
	}

	if _, err := f.bus.Publish(ctx, violation); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// NewFieldUseCase creates a new FieldUseCase recording integrity violations
// through bus.
func NewFieldUseCase(
	keyProvider KeyProvider,
	envelope cryptoService.Envelope,
	bus auditUseCase.EventBus,
) FieldUseCase {
	return &fieldUseCase{
		keyProvider: keyProvider,
		envelope:    envelope,
		bus:         bus,
	}
}
