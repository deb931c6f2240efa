// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/caretrail/phicore/internal/crypto/domain"
	customValidation "github.com/caretrail/phicore/internal/validation"
)

// EncryptFieldRequest contains the parameters for sealing a PHI field value.
type EncryptFieldRequest struct {
	Value         string            `json:"value"` // Base64-encoded plaintext
	FieldType     string            `json:"field_type"`
	RecordContext map[string]string `json:"record_context"`
}

// Validate checks if the encrypt field request is valid.
func (r *EncryptFieldRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Value,
			validation.Required,
			customValidation.Base64,
		),
		validation.Field(&r.FieldType,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.RecordContext,
			validation.Required,
		),
	)
}

// DecryptFieldRequest contains the parameters for opening a sealed envelope.
type DecryptFieldRequest struct {
	Envelope      string            `json:"envelope"` // Base64-encoded envelope
	FieldType     string            `json:"field_type"`
	RecordContext map[string]string `json:"record_context"`
}

// Validate checks if the decrypt field request is valid.
func (r *DecryptFieldRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Envelope,
			validation.Required,
			customValidation.Base64,
		),
		validation.Field(&r.FieldType,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.RecordContext,
			validation.Required,
		),
	)
}

// RotateKeyRequest contains the parameters for rotating a context's data key.
type RotateKeyRequest struct {
	Algorithm string `json:"algorithm"` // "AES-256-GCM" or "ChaCha20-Poly1305"
}

// Validate checks if the rotate key request is valid.
func (r *RotateKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Algorithm,
			validation.Required,
			customValidation.NotBlank,
			validation.By(validateAlgorithm),
		),
	)
}

func validateAlgorithm(value any) error {
	s, _ := value.(string)
	switch cryptoDomain.Algorithm(s) {
	case cryptoDomain.AESGCM, cryptoDomain.ChaCha20:
		return nil
	}
	return validation.NewError(
		"validation_algorithm",
		"must be one of: AES-256-GCM, ChaCha20-Poly1305",
	)
}
