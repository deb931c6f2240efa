package domain

// Algorithm represents the AEAD algorithm used for field encryption.
//
// All supported algorithms provide Authenticated Encryption with Associated Data,
// ensuring both confidentiality and tamper detection for protected health
// information at rest.
type Algorithm string

const (
	// AESGCM represents the AES-256-GCM authenticated encryption algorithm.
	//
	// Uses a 256-bit key, a 12-byte nonce, and a 16-byte authentication tag.
	// Preferred on CPUs with AES-NI hardware acceleration.
	AESGCM Algorithm = "AES-256-GCM"

	// ChaCha20 represents the ChaCha20-Poly1305 authenticated encryption algorithm.
	//
	// Uses a 256-bit key, a 12-byte nonce, and a 16-byte authentication tag.
	// Constant-time software implementation for platforms without AES-NI.
	ChaCha20 Algorithm = "ChaCha20-Poly1305"
)

// EnvelopeVersion identifies the envelope schema version. Bumping the version
// allows the algorithm set or the AAD layout to change without breaking
// decryption of historical envelopes.
type EnvelopeVersion string

const (
	// EnvelopeV2 is the current envelope schema version.
	EnvelopeV2 EnvelopeVersion = "v2"
)

// KeyStatus represents the lifecycle state of a data key.
type KeyStatus string

const (
	// KeyStatusActive marks the key used for all new encryption in its context.
	KeyStatusActive KeyStatus = "active"

	// KeyStatusRetired marks a rotated-out key. Retired keys remain resolvable
	// for decrypting historical envelopes but are never used for new encryption.
	KeyStatusRetired KeyStatus = "retired"
)
