package domain

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/caretrail/phicore/internal/errors"
)

func testEnvelope(t *testing.T) *EncryptedField {
	t.Helper()

	envelope := &EncryptedField{
		Version:    EnvelopeV2,
		Algorithm:  AESGCM,
		FieldType:  "ssn",
		KeyID:      uuid.Must(uuid.NewV7()),
		Nonce:      []byte("012345678901"),
		AAD:        []byte(`{"field_type":"ssn","record_context":{"record_id":"42"},"version":"v2"}`),
		Ciphertext: []byte("ciphertext-with-tag"),
		Timestamp:  time.Now().UTC(),
	}
	envelope.Checksum = envelope.ComputeChecksum()
	return envelope
}

func TestEncryptedField_MarshalRoundTrip(t *testing.T) {
	envelope := testEnvelope(t)

	encoded, err := envelope.Marshal()
	require.NoError(t, err)

	parsed, err := UnmarshalEncryptedField(encoded)
	require.NoError(t, err)

	assert.Equal(t, envelope.Version, parsed.Version)
	assert.Equal(t, envelope.Algorithm, parsed.Algorithm)
	assert.Equal(t, envelope.FieldType, parsed.FieldType)
	assert.Equal(t, envelope.KeyID, parsed.KeyID)
	assert.Equal(t, envelope.Nonce, parsed.Nonce)
	assert.Equal(t, envelope.AAD, parsed.AAD)
	assert.Equal(t, envelope.Ciphertext, parsed.Ciphertext)
	assert.Equal(t, envelope.Checksum, parsed.Checksum)
	assert.True(t, envelope.Timestamp.Equal(parsed.Timestamp))
}

func TestEncryptedField_WireFormatFields(t *testing.T) {
	// The persisted wire format is a contract with storage: base64-encoded
	// JSON with this exact field set.
	envelope := testEnvelope(t)

	encoded, err := envelope.Marshal()
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))

	for _, field := range []string{
		"version", "algorithm", "field_type", "key_id",
		"nonce", "aad", "data", "timestamp", "checksum",
	} {
		assert.Contains(t, wire, field)
	}
	assert.Len(t, wire, 9)
	assert.Equal(t, "v2", wire["version"])
	assert.Equal(t, "AES-256-GCM", wire["algorithm"])
}

func TestEncryptedField_ComputeChecksum(t *testing.T) {
	envelope := testEnvelope(t)

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, envelope.ComputeChecksum(), envelope.ComputeChecksum())
	})

	t.Run("sensitive to ciphertext change", func(t *testing.T) {
		before := envelope.ComputeChecksum()
		envelope.Ciphertext[0] ^= 0x01
		assert.NotEqual(t, before, envelope.ComputeChecksum())
		envelope.Ciphertext[0] ^= 0x01
	})

	t.Run("sensitive to field type change", func(t *testing.T) {
		before := envelope.ComputeChecksum()
		envelope.FieldType = "diagnosis"
		assert.NotEqual(t, before, envelope.ComputeChecksum())
		envelope.FieldType = "ssn"
	})

	t.Run("length prefixes prevent field boundary shifts", func(t *testing.T) {
		// "ab" + "c" must not collide with "a" + "bc".
		a := &EncryptedField{FieldType: "ab", Nonce: []byte("c")}
		b := &EncryptedField{FieldType: "a", Nonce: []byte("bc")}
		assert.NotEqual(t, a.ComputeChecksum(), b.ComputeChecksum())
	})
}

func TestUnmarshalEncryptedField_Invalid(t *testing.T) {
	validWire := func(t *testing.T, mutate func(m map[string]any)) string {
		t.Helper()
		envelope := testEnvelope(t)
		encoded, err := envelope.Marshal()
		require.NoError(t, err)
		raw, err := base64.StdEncoding.DecodeString(encoded)
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		mutate(m)
		mutated, err := json.Marshal(m)
		require.NoError(t, err)
		return base64.StdEncoding.EncodeToString(mutated)
	}

	tests := []struct {
		name    string
		encoded string
	}{
		{"not base64", "not-base64!!!"},
		{"not json", base64.StdEncoding.EncodeToString([]byte("not json"))},
		{"bad key id", validWire(t, func(m map[string]any) { m["key_id"] = "nope" })},
		{"bad nonce", validWire(t, func(m map[string]any) { m["nonce"] = "!!!" })},
		{"bad aad", validWire(t, func(m map[string]any) { m["aad"] = "!!!" })},
		{"bad data", validWire(t, func(m map[string]any) { m["data"] = "!!!" })},
		{"bad timestamp", validWire(t, func(m map[string]any) { m["timestamp"] = "yesterday" })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalEncryptedField(tt.encoded)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}
