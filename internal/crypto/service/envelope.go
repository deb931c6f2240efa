package service

import (
	"crypto/subtle"
	"encoding/json"
	"time"

	cryptoDomain "github.com/caretrail/phicore/internal/crypto/domain"
	apperrors "github.com/caretrail/phicore/internal/errors"
)

// EnvelopeService implements the Envelope interface: stateless encryption and
// decryption of a single PHI field value into and out of a versioned,
// authenticated envelope.
//
// The field type and record context are canonically serialized into the AAD,
// so an envelope swapped between two records (or two fields of the same
// record) fails authentication instead of silently decrypting to the wrong
// field's meaning. This is a correctness property, not just confidentiality.
type EnvelopeService struct {
	aeadManager AEADManager
}

// NewEnvelopeService creates a new EnvelopeService with the provided AEADManager.
func NewEnvelopeService(aeadManager AEADManager) *EnvelopeService {
	return &EnvelopeService{
		aeadManager: aeadManager,
	}
}

// aadContext is the canonical AAD layout. JSON marshaling is deterministic:
// struct fields serialize in declaration order and map keys sort.
type aadContext struct {
	FieldType     string            `json:"field_type"`
	RecordContext map[string]string `json:"record_context"`
	Version       string            `json:"version"`
}

// buildAAD canonically serializes the encryption context for AEAD binding.
func buildAAD(fieldType string, recordContext map[string]string, version cryptoDomain.EnvelopeVersion) ([]byte, error) {
	if recordContext == nil {
		recordContext = map[string]string{}
	}

	aad, err := json.Marshal(aadContext{
		FieldType:     fieldType,
		RecordContext: recordContext,
		Version:       string(version),
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build aad")
	}

	return aad, nil
}

// Encrypt seals a PHI field value into a versioned authenticated envelope.
//
// The data key must be active and unwrapped (Key populated). A fresh nonce is
// generated per call, the AAD binds field type and record context, and an
// independent SHA-256 checksum over the non-secret envelope fields is stamped
// as defense in depth beyond the AEAD tag.
func (s *EnvelopeService) Encrypt(
	plaintext []byte,
	fieldType string,
	recordContext map[string]string,
	key *cryptoDomain.KeyContext,
) (*cryptoDomain.EncryptedField, error) {
	aad, err := buildAAD(fieldType, recordContext, cryptoDomain.EnvelopeV2)
	if err != nil {
		return nil, err
	}

	cipher, err := s.aeadManager.CreateCipher(key.Key, key.Algorithm)
	if err != nil {
		return nil, err
	}

	ciphertext, nonce, err := cipher.Encrypt(plaintext, aad)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt field")
	}

	envelope := &cryptoDomain.EncryptedField{
		Version:    cryptoDomain.EnvelopeV2,
		Algorithm:  key.Algorithm,
		FieldType:  fieldType,
		KeyID:      key.KeyID,
		Nonce:      nonce,
		AAD:        aad,
		Ciphertext: ciphertext,
		Timestamp:  time.Now().UTC(),
	}
	envelope.Checksum = envelope.ComputeChecksum()

	return envelope, nil
}

// Decrypt opens an envelope sealed by Encrypt.
//
// Verification order: envelope version, recomputed AAD against the embedded
// AAD, independent checksum, then AEAD authentication. Any integrity failure
// returns ErrIntegrityCheckFailed without distinguishing the cause, so a
// tampered envelope and a substituted envelope are indistinguishable to the
// caller.
func (s *EnvelopeService) Decrypt(
	envelope *cryptoDomain.EncryptedField,
	fieldType string,
	recordContext map[string]string,
	key *cryptoDomain.KeyContext,
) ([]byte, error) {
	if envelope.Version != cryptoDomain.EnvelopeV2 {
		return nil, cryptoDomain.ErrVersionUnsupported
	}

	expectedAAD, err := buildAAD(fieldType, recordContext, envelope.Version)
	if err != nil {
		return nil, err
	}

	// The supplied context must reproduce the AAD the envelope was sealed
	// with. This is what prevents envelope substitution across fields or
	// records.
	if subtle.ConstantTimeCompare(expectedAAD, envelope.AAD) != 1 {
		return nil, cryptoDomain.ErrIntegrityCheckFailed
	}

	if envelope.ComputeChecksum() != envelope.Checksum {
		return nil, cryptoDomain.ErrIntegrityCheckFailed
	}

	cipher, err := s.aeadManager.CreateCipher(key.Key, envelope.Algorithm)
	if err != nil {
		return nil, err
	}

	plaintext, err := cipher.Decrypt(envelope.Ciphertext, envelope.Nonce, expectedAAD)
	if err != nil {
		return nil, cryptoDomain.ErrIntegrityCheckFailed
	}

	return plaintext, nil
}
