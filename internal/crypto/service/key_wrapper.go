package service

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	cryptoDomain "github.com/caretrail/phicore/internal/crypto/domain"
)

// KeyWrapperService implements the KeyWrapper interface for the envelope
// hierarchy: per-context data keys wrapped with the master key.
//
// The wrapping key is not the raw master key. It is derived per context with
// HKDF-SHA256 (info "data-key-wrap-v1:<context>"), separating key-wrapping
// usage from any other master key usage and binding the wrapped blob to its
// context: a wrapped key moved to a different context fails to unwrap.
type KeyWrapperService struct {
	aeadManager AEADManager
}

// NewKeyWrapper creates a new KeyWrapperService with the provided AEADManager.
func NewKeyWrapper(aeadManager AEADManager) *KeyWrapperService {
	return &KeyWrapperService{
		aeadManager: aeadManager,
	}
}

// deriveWrappingKey uses HKDF-SHA256 to derive the 32-byte wrapping key for
// a context from the master key. Info parameter is versioned for future
// algorithm changes.
func (kw *KeyWrapperService) deriveWrappingKey(masterKey []byte, contextID string) ([]byte, error) {
	info := []byte("data-key-wrap-v1:" + contextID)
	reader := hkdf.New(sha256.New, masterKey, nil, info)

	wrappingKey := make([]byte, 32)
	if _, err := io.ReadFull(reader, wrappingKey); err != nil {
		return nil, err
	}

	return wrappingKey, nil
}

// CreateDataKey generates a new 32-byte data key for a context and wraps it
// with the master key. The returned KeyContext is active; the plaintext key
// must never be persisted.
func (kw *KeyWrapperService) CreateDataKey(
	masterKey *cryptoDomain.MasterKey,
	contextID string,
	alg cryptoDomain.Algorithm,
	version uint,
) (*cryptoDomain.KeyContext, error) {
	dataKey := make([]byte, 32)
	if _, err := rand.Read(dataKey); err != nil {
		return nil, fmt.Errorf("failed to generate data key: %w", err)
	}

	wrappingKey, err := kw.deriveWrappingKey(masterKey.Key, contextID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive wrapping key: %w", err)
	}
	defer cryptoDomain.Zero(wrappingKey)

	aead, err := kw.aeadManager.CreateCipher(wrappingKey, alg)
	if err != nil {
		return nil, err
	}

	wrapped, nonce, err := aead.Encrypt(dataKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap data key: %w", err)
	}

	return &cryptoDomain.KeyContext{
		KeyID:       uuid.Must(uuid.NewV7()),
		ContextID:   contextID,
		MasterKeyID: masterKey.ID,
		Algorithm:   alg,
		WrappedKey:  wrapped,
		Key:         dataKey,
		Nonce:       nonce,
		Status:      cryptoDomain.KeyStatusActive,
		Version:     version,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// UnwrapDataKey recovers the plaintext data key from its wrapped form using
// the master key that wrapped it. The result must be zeroed after use.
func (kw *KeyWrapperService) UnwrapDataKey(
	key *cryptoDomain.KeyContext,
	masterKey *cryptoDomain.MasterKey,
) ([]byte, error) {
	wrappingKey, err := kw.deriveWrappingKey(masterKey.Key, key.ContextID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive wrapping key: %w", err)
	}
	defer cryptoDomain.Zero(wrappingKey)

	aead, err := kw.aeadManager.CreateCipher(wrappingKey, key.Algorithm)
	if err != nil {
		return nil, err
	}

	dataKey, err := aead.Decrypt(key.WrappedKey, key.Nonce, nil)
	if err != nil {
		return nil, cryptoDomain.ErrIntegrityCheckFailed
	}

	return dataKey, nil
}
