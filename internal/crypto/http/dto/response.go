package dto

import (
	"encoding/base64"
	"time"

	cryptoDomain "github.com/caretrail/phicore/internal/crypto/domain"
)

// EncryptFieldResponse carries the sealed envelope back to the caller.
type EncryptFieldResponse struct {
	Envelope           string `json:"envelope"`
	FieldType          string `json:"field_type"`
	DataClassification string `json:"data_classification"`
}

// DecryptFieldResponse carries the opened plaintext, base64-encoded.
type DecryptFieldResponse struct {
	Value              string `json:"value"`
	FieldType          string `json:"field_type"`
	DataClassification string `json:"data_classification"`
}

// MapDecryptFieldResponse builds a decrypt response from plaintext bytes.
func MapDecryptFieldResponse(
	plaintext []byte,
	fieldType string,
	classification cryptoDomain.DataClassification,
) DecryptFieldResponse {
	return DecryptFieldResponse{
		Value:              base64.StdEncoding.EncodeToString(plaintext),
		FieldType:          fieldType,
		DataClassification: string(classification),
	}
}

// KeyResponse represents a data key in API responses. Key material is never
// part of a response; only metadata is exposed.
type KeyResponse struct {
	KeyID     string     `json:"key_id"`
	ContextID string     `json:"context_id"`
	Algorithm string     `json:"algorithm"`
	Version   uint       `json:"version"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	RetiredAt *time.Time `json:"retired_at,omitempty"`
}

// MapKeyToResponse converts a domain key context to its API representation.
func MapKeyToResponse(key *cryptoDomain.KeyContext) KeyResponse {
	return KeyResponse{
		KeyID:     key.KeyID.String(),
		ContextID: key.ContextID,
		Algorithm: string(key.Algorithm),
		Version:   key.Version,
		Status:    string(key.Status),
		CreatedAt: key.CreatedAt,
		RetiredAt: key.RetiredAt,
	}
}
