// Package usecase defines the business logic interfaces for PHI field
// encryption and data key management.
//
// This package contains interface definitions for repositories and use cases
// related to envelope encryption, key resolution, and key rotation.
// Implementations coordinate between the cryptographic services and the
// persistence layer.
package usecase

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/caretrail/phicore/internal/crypto/domain"
)

// KeyRepository defines the interface for data key persistence.
//
// This interface abstracts data key storage operations, allowing different
// implementations for PostgreSQL, MySQL, or other data stores. It supports
// transaction-aware operations through context propagation, enabling atomic
// key rotation workflows.
//
// Implementation requirements:
//   - Support both direct database operations and transactional operations
//   - GetActive must return the highest-version active key for a context
//   - Be thread-safe for concurrent access
//
// Available implementations:
//   - PostgreSQLKeyRepository: Uses native UUID and BYTEA types
//   - MySQLKeyRepository: Uses CHAR(36) for UUIDs and BLOB for binary data
type KeyRepository interface {
	// Create stores a new wrapped data key. The key must have all required
	// fields populated; the plaintext Key field is never written.
	Create(ctx context.Context, key *cryptoDomain.KeyContext) error

	// GetActive retrieves the active data key for a context.
	// Returns cryptoDomain.ErrKeyContextNotFound if the context has no
	// active key.
	GetActive(ctx context.Context, contextID string) (*cryptoDomain.KeyContext, error)

	// GetByID retrieves a data key by its id regardless of status. Retired
	// keys stay resolvable so historical envelopes remain decryptable.
	// Returns cryptoDomain.ErrKeyNotFound if no such key exists.
	GetByID(ctx context.Context, keyID uuid.UUID) (*cryptoDomain.KeyContext, error)

	// Retire marks a data key retired and records the retirement time.
	// Returns cryptoDomain.ErrKeyNotFound if no such key exists.
	Retire(ctx context.Context, keyID uuid.UUID) error
}

// KeyProvider resolves and rotates data keys for key contexts.
//
// Resolution is read-heavy: every field encryption resolves the active key
// for its context and every decryption resolves the key an envelope names.
// Implementations cache unwrapped keys in memory and deduplicate concurrent
// cache misses, so steady-state resolution does not touch the database.
//
// A context that has never been used gets its first key lazily on the first
// ResolveActive call rather than requiring an explicit provisioning step.
type KeyProvider interface {
	// ResolveActive returns the active data key for a context with plaintext
	// key material populated, creating the first key for the context if none
	// exists yet.
	ResolveActive(
		ctx context.Context,
		masterKeyChain *cryptoDomain.MasterKeyChain,
		contextID string,
	) (*cryptoDomain.KeyContext, error)

	// ResolveByID returns the data key with the given id, active or retired,
	// with plaintext key material populated. Used on the decryption path
	// where the envelope names the exact key that sealed it.
	ResolveByID(
		ctx context.Context,
		masterKeyChain *cryptoDomain.MasterKeyChain,
		keyID uuid.UUID,
	) (*cryptoDomain.KeyContext, error)

	// Rotate retires the context's current active key and creates a new
	// active key with an incremented version, atomically. Envelopes sealed
	// under the retired key remain decryptable; only new encryption moves to
	// the new key. Returns the new active key.
	Rotate(
		ctx context.Context,
		masterKeyChain *cryptoDomain.MasterKeyChain,
		contextID string,
		alg cryptoDomain.Algorithm,
	) (*cryptoDomain.KeyContext, error)

	// Close securely clears all cached plaintext key material.
	Close()
}

// FieldUseCase orchestrates PHI field protection: it resolves the key for a
// field's context and seals or opens the versioned envelope.
//
// The returned data classification comes from the field registry and feeds
// the data_classification attribute of audit events recorded around these
// operations.
type FieldUseCase interface {
	// EncryptField seals a plaintext field value into the persisted envelope
	// format under the active key of the field's context.
	EncryptField(
		ctx context.Context,
		masterKeyChain *cryptoDomain.MasterKeyChain,
		fieldType string,
		recordContext map[string]string,
		plaintext []byte,
	) (string, cryptoDomain.DataClassification, error)

	// DecryptField opens a persisted envelope. The supplied field type and
	// record context must match the values the envelope was sealed with; any
	// mismatch or tampering surfaces as cryptoDomain.ErrIntegrityCheckFailed.
	DecryptField(
		ctx context.Context,
		masterKeyChain *cryptoDomain.MasterKeyChain,
		fieldType string,
		recordContext map[string]string,
		encoded string,
	) ([]byte, cryptoDomain.DataClassification, error)
}
