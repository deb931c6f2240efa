package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/caretrail/phicore/internal/crypto/domain"
	"github.com/caretrail/phicore/internal/metrics"
)

// fieldUseCaseWithMetrics decorates FieldUseCase with metrics instrumentation.
type fieldUseCaseWithMetrics struct {
	next    FieldUseCase
	metrics metrics.BusinessMetrics
}

// NewFieldUseCaseWithMetrics wraps a FieldUseCase with metrics recording.
func NewFieldUseCaseWithMetrics(useCase FieldUseCase, m metrics.BusinessMetrics) FieldUseCase {
	return &fieldUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (f *fieldUseCaseWithMetrics) EncryptField(
	ctx context.Context,
	masterKeyChain *cryptoDomain.MasterKeyChain,
	fieldType string,
	recordContext map[string]string,
	plaintext []byte,
) (string, cryptoDomain.DataClassification, error) {
	start := time.Now()
	envelope, classification, err := f.next.EncryptField(
		ctx, masterKeyChain, fieldType, recordContext, plaintext,
	)

	status := "success"
	if err != nil {
		status = "error"
	}

	f.metrics.RecordOperation(ctx, "crypto", "encrypt_field", status)
	f.metrics.RecordDuration(ctx, "crypto", "encrypt_field", time.Since(start), status)

	return envelope, classification, err
}

func (f *fieldUseCaseWithMetrics) DecryptField(
	ctx context.Context,
	masterKeyChain *cryptoDomain.MasterKeyChain,
	fieldType string,
	recordContext map[string]string,
	encoded string,
) ([]byte, cryptoDomain.DataClassification, error) {
	start := time.Now()
	plaintext, classification, err := f.next.DecryptField(
		ctx, masterKeyChain, fieldType, recordContext, encoded,
	)

	status := "success"
	if err != nil {
		status = "error"
	}

	f.metrics.RecordOperation(ctx, "crypto", "decrypt_field", status)
	f.metrics.RecordDuration(ctx, "crypto", "decrypt_field", time.Since(start), status)

	return plaintext, classification, err
}

// keyProviderWithMetrics decorates KeyProvider with metrics instrumentation.
type keyProviderWithMetrics struct {
	next    KeyProvider
	metrics metrics.BusinessMetrics
}

// NewKeyProviderWithMetrics wraps a KeyProvider with metrics recording.
func NewKeyProviderWithMetrics(provider KeyProvider, m metrics.BusinessMetrics) KeyProvider {
	return &keyProviderWithMetrics{
		next:    provider,
		metrics: m,
	}
}

func (k *keyProviderWithMetrics) ResolveActive(
	ctx context.Context,
	masterKeyChain *cryptoDomain.MasterKeyChain,
	contextID string,
) (*cryptoDomain.KeyContext, error) {
	start := time.Now()
	key, err := k.next.ResolveActive(ctx, masterKeyChain, contextID)

	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "crypto", "resolve_active", status)
	k.metrics.RecordDuration(ctx, "crypto", "resolve_active", time.Since(start), status)

	return key, err
}

func (k *keyProviderWithMetrics) ResolveByID(
	ctx context.Context,
	masterKeyChain *cryptoDomain.MasterKeyChain,
	keyID uuid.UUID,
) (*cryptoDomain.KeyContext, error) {
	start := time.Now()
	key, err := k.next.ResolveByID(ctx, masterKeyChain, keyID)

	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "crypto", "resolve_by_id", status)
	k.metrics.RecordDuration(ctx, "crypto", "resolve_by_id", time.Since(start), status)

	return key, err
}

func (k *keyProviderWithMetrics) Rotate(
	ctx context.Context,
	masterKeyChain *cryptoDomain.MasterKeyChain,
	contextID string,
	alg cryptoDomain.Algorithm,
) (*cryptoDomain.KeyContext, error) {
	start := time.Now()
	key, err := k.next.Rotate(ctx, masterKeyChain, contextID, alg)

	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "crypto", "rotate_key", status)
	k.metrics.RecordDuration(ctx, "crypto", "rotate_key", time.Since(start), status)

	return key, err
}

func (k *keyProviderWithMetrics) Close() {
	k.next.Close()
}
