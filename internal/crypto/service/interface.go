// Package service provides the cryptographic services for PHI field
// protection: AEAD ciphers, the versioned envelope codec, data key wrapping,
// and the KMS keeper used to unwrap master key material at startup.
package service

import (
	"context"

	cryptoDomain "github.com/caretrail/phicore/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyWrapper manages the lifecycle of data keys in the envelope hierarchy:
// data keys are generated per key context and wrapped with the master key.
type KeyWrapper interface {
	// CreateDataKey generates a new 32-byte data key for a context and wraps
	// it with the master key. The returned KeyContext has both the wrapped
	// and plaintext key populated; only the wrapped form may be persisted.
	CreateDataKey(
		masterKey *cryptoDomain.MasterKey,
		contextID string,
		alg cryptoDomain.Algorithm,
		version uint,
	) (*cryptoDomain.KeyContext, error)

	// UnwrapDataKey recovers the plaintext data key from its wrapped form.
	// The result must be zeroed after use.
	UnwrapDataKey(key *cryptoDomain.KeyContext, masterKey *cryptoDomain.MasterKey) ([]byte, error)
}

// Envelope is the stateless field encryption service. Both operations are
// pure functions of their inputs plus fresh randomness and are safe for
// unlimited parallel invocation.
type Envelope interface {
	// Encrypt seals a PHI field value into a versioned authenticated envelope
	// under the given data key, binding field type and record context into
	// the AAD.
	Encrypt(
		plaintext []byte,
		fieldType string,
		recordContext map[string]string,
		key *cryptoDomain.KeyContext,
	) (*cryptoDomain.EncryptedField, error)

	// Decrypt opens an envelope. The caller-supplied field type and record
	// context must reproduce the AAD the envelope was sealed with; any
	// mismatch, checksum failure, or AEAD authentication failure returns
	// ErrIntegrityCheckFailed.
	Decrypt(
		envelope *cryptoDomain.EncryptedField,
		fieldType string,
		recordContext map[string]string,
		key *cryptoDomain.KeyContext,
	) ([]byte, error)
}

// KMSKeeper abstracts the subset of gocloud.dev/secrets.Keeper this service
// needs so tests can supply fakes.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KMSService opens keepers for the configured KMS provider.
type KMSService interface {
	// OpenKeeper opens a keeper for the given key URI.
	// Returns an error if the URI is invalid or the connection fails.
	OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error)
}
