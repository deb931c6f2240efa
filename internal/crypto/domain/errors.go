package domain

import (
	"github.com/caretrail/phicore/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors so
// callers can distinguish retryable infrastructure failure from non-retryable
// tamper detection. All errors are mapped to appropriate HTTP status codes by
// the error handling layer.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	//
	// Supported algorithms: AESGCM (AES-256-GCM), ChaCha20 (ChaCha20-Poly1305).
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the cryptographic key size is invalid.
	//
	// All keys (master keys and data keys) must be exactly 32 bytes (256 bits).
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrIntegrityCheckFailed indicates envelope authentication failed.
	//
	// This error is returned when the AEAD tag does not verify, the independent
	// checksum does not match, or the caller-supplied field type / record context
	// does not reproduce the AAD the envelope was sealed with. It covers both
	// tampering and envelope substitution across fields or records.
	//
	// Never retried automatically; treated as a security event.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrIntegrityCheckFailed = errors.Wrap(errors.ErrInvalidInput, "integrity check failed")

	// ErrVersionUnsupported indicates the envelope schema version is unknown.
	//
	// Surfaces as a configuration/deployment error: the stored envelope was
	// written by a newer (or corrupted) service version.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrVersionUnsupported = errors.Wrap(errors.ErrInvalidInput, "unsupported envelope version")

	// ErrKeyNotFound indicates the referenced data key id is unknown.
	//
	// HTTP Status: 404 Not Found
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "data key not found")

	// ErrKeyContextNotFound indicates no key set exists for the key context.
	//
	// HTTP Status: 404 Not Found
	ErrKeyContextNotFound = errors.Wrap(errors.ErrNotFound, "key context not found")

	// ErrKeyStoreUnavailable indicates the backing key store could not be reached.
	// Transient: callers may retry.
	//
	// HTTP Status: 503 Service Unavailable
	ErrKeyStoreUnavailable = errors.Wrap(errors.ErrUnavailable, "key store unavailable")

	// ErrMasterKeyNotFound indicates the master key referenced by a wrapped data
	// key is not present in the master key chain.
	ErrMasterKeyNotFound = errors.Wrap(errors.ErrNotFound, "master key not found")

	// ErrUnknownFieldType indicates the logical PHI field type is not registered.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrUnknownFieldType = errors.Wrap(errors.ErrInvalidInput, "unknown field type")
)
