package domain

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/caretrail/phicore/internal/errors"
)

// EncryptedField is the only form in which a PHI attribute may be persisted,
// logged, cached, or transmitted outside this module.
//
// The field type and record context are bound into the AEAD additional
// authenticated data, so an envelope copied into a different field's storage
// slot fails authentication instead of silently decrypting to the wrong
// field's meaning. The checksum is an independent integrity digest over the
// envelope's non-secret fields, defense in depth beyond the AEAD tag.
type EncryptedField struct {
	Version    EnvelopeVersion
	Algorithm  Algorithm
	FieldType  string
	KeyID      uuid.UUID
	Nonce      []byte
	AAD        []byte // Canonical JSON context, authenticated but not encrypted
	Ciphertext []byte // Encrypted payload with AEAD tag appended
	Timestamp  time.Time
	Checksum   string // hex SHA-256 over the non-secret envelope fields
}

// wireEnvelope is the persisted JSON representation of an EncryptedField.
// The full object is base64-encoded for storage.
type wireEnvelope struct {
	Version   string `json:"version"`
	Algorithm string `json:"algorithm"`
	FieldType string `json:"field_type"`
	KeyID     string `json:"key_id"`
	Nonce     string `json:"nonce"`
	AAD       string `json:"aad"`
	Data      string `json:"data"`
	Timestamp string `json:"timestamp"`
	Checksum  string `json:"checksum"`
}

// ComputeChecksum returns the hex SHA-256 digest over the envelope's
// non-secret fields using length-prefixed canonical encoding. Length
// prefixes prevent ambiguity between adjacent variable-length fields.
func (e *EncryptedField) ComputeChecksum() string {
	buf := make([]byte, 0, 256)
	buf = appendLengthPrefixed(buf, []byte(e.Version))
	buf = appendLengthPrefixed(buf, []byte(e.Algorithm))
	buf = appendLengthPrefixed(buf, []byte(e.FieldType))
	buf = appendLengthPrefixed(buf, e.KeyID[:])
	buf = appendLengthPrefixed(buf, e.Nonce)
	buf = appendLengthPrefixed(buf, e.AAD)
	buf = appendLengthPrefixed(buf, e.Ciphertext)
	buf = appendLengthPrefixed(buf, []byte(e.Timestamp.UTC().Format(time.RFC3339Nano)))

	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

// Marshal serializes the envelope to its persisted wire format:
// base64-encoded JSON with the exact field set of the storage contract.
func (e *EncryptedField) Marshal() (string, error) {
	wire := wireEnvelope{
		Version:   string(e.Version),
		Algorithm: string(e.Algorithm),
		FieldType: e.FieldType,
		KeyID:     e.KeyID.String(),
		Nonce:     base64.StdEncoding.EncodeToString(e.Nonce),
		AAD:       base64.StdEncoding.EncodeToString(e.AAD),
		Data:      base64.StdEncoding.EncodeToString(e.Ciphertext),
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
		Checksum:  e.Checksum,
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal envelope")
	}

	return base64.StdEncoding.EncodeToString(data), nil
}

// UnmarshalEncryptedField parses a persisted envelope from its wire format.
// Structural validation only; checksum and AEAD verification happen at
// decryption time so tampering is reported as ErrIntegrityCheckFailed.
func UnmarshalEncryptedField(encoded string) (*EncryptedField, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "envelope is not valid base64")
	}

	var wire wireEnvelope
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "envelope is not valid JSON")
	}

	keyID, err := uuid.Parse(wire.KeyID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "envelope key_id is not a valid UUID")
	}

	nonce, err := base64.StdEncoding.DecodeString(wire.Nonce)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "envelope nonce is not valid base64")
	}

	aad, err := base64.StdEncoding.DecodeString(wire.AAD)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "envelope aad is not valid base64")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(wire.Data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "envelope data is not valid base64")
	}

	timestamp, err := time.Parse(time.RFC3339Nano, wire.Timestamp)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "envelope timestamp is not valid RFC 3339")
	}

	return &EncryptedField{
		Version:    EnvelopeVersion(wire.Version),
		Algorithm:  Algorithm(wire.Algorithm),
		FieldType:  wire.FieldType,
		KeyID:      keyID,
		Nonce:      nonce,
		AAD:        aad,
		Ciphertext: ciphertext,
		Timestamp:  timestamp,
		Checksum:   wire.Checksum,
	}, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
// Panics if data length exceeds uint32 max to prevent integer overflow.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	dataLen := len(data)
	if dataLen > 0xFFFFFFFF {
		panic("data length exceeds uint32 max")
	}
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(dataLen))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}
