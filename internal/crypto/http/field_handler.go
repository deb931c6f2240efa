// Package http provides HTTP handlers for PHI field protection and data key
// management.
package http

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	cryptoDomain "github.com/caretrail/phicore/internal/crypto/domain"
	"github.com/caretrail/phicore/internal/crypto/http/dto"
	cryptoUseCase "github.com/caretrail/phicore/internal/crypto/usecase"
	"github.com/caretrail/phicore/internal/httputil"
	customValidation "github.com/caretrail/phicore/internal/validation"
)

// FieldHandler handles HTTP requests for sealing and opening PHI field values.
type FieldHandler struct {
	fieldUseCase   cryptoUseCase.FieldUseCase
	masterKeyChain *cryptoDomain.MasterKeyChain
	logger         *slog.Logger
}

// NewFieldHandler creates a new field handler with required dependencies.
func NewFieldHandler(
	fieldUseCase cryptoUseCase.FieldUseCase,
	masterKeyChain *cryptoDomain.MasterKeyChain,
	logger *slog.Logger,
) *FieldHandler {
	return &FieldHandler{
		fieldUseCase:   fieldUseCase,
		masterKeyChain: masterKeyChain,
		logger:         logger,
	}
}

// EncryptFieldHandler seals a single PHI field value into an envelope.
// POST /v1/phi/encrypt
// Returns 200 OK with the base64-encoded envelope.
func (h *FieldHandler) EncryptFieldHandler(c *gin.Context) {
	var req dto.EncryptFieldRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	plaintext, err := base64.StdEncoding.DecodeString(req.Value)
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid base64 value: %w", err), h.logger)
		return
	}
	defer cryptoDomain.Zero(plaintext)

	envelope, classification, err := h.fieldUseCase.EncryptField(
		c.Request.Context(),
		h.masterKeyChain,
		req.FieldType,
		req.RecordContext,
		plaintext,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.EncryptFieldResponse{
		Envelope:           envelope,
		FieldType:          req.FieldType,
		DataClassification: string(classification),
	}
	c.JSON(http.StatusOK, response)
}

// DecryptFieldHandler opens a sealed envelope back into the field value.
// POST /v1/phi/decrypt
// Returns 200 OK with the base64-encoded plaintext. SECURITY: plaintext is
// zeroed after the response is written.
func (h *FieldHandler) DecryptFieldHandler(c *gin.Context) {
	var req dto.DecryptFieldRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	plaintext, classification, err := h.fieldUseCase.DecryptField(
		c.Request.Context(),
		h.masterKeyChain,
		req.FieldType,
		req.RecordContext,
		req.Envelope,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer cryptoDomain.Zero(plaintext)

	response := dto.MapDecryptFieldResponse(plaintext, req.FieldType, classification)
	c.JSON(http.StatusOK, response)
}
