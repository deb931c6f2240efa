package http

import (
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

// KeyHandler handles HTTP requests for data key rotation.
type KeyHandler struct {
	keyProvider    cryptoUseCase.KeyProvider
	masterKeyChain *cryptoDomain.MasterKeyChain
	logger         *slog.Logger
}

// NewKeyHandler creates a new key handler with required dependencies.
func NewKeyHandler(
	keyProvider cryptoUseCase.KeyProvider,
	masterKeyChain *cryptoDomain.MasterKeyChain,
	logger *slog.Logger,
) *KeyHandler {
	return &KeyHandler{
		keyProvider:    keyProvider,
		masterKeyChain: masterKeyChain,
		logger:         logger,
	}
}

// RotateKeyHandler retires the current active key for a context and activates
// a new one. Existing envelopes remain decryptable under the retired key.
// POST /v1/keys/:context/rotate
// Returns 201 Created with the new key's metadata.
func (h *KeyHandler) RotateKeyHandler(c *gin.Context) {
	contextID := c.Param("context")
	if contextID == "" {
		httputil.HandleBadRequestGin(
			c,
			fmt.Errorf("key context cannot be empty"),
			h.logger,
		)
		return
	}

	var req dto.RotateKeyRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	key, err := h.keyProvider.Rotate(
		c.Request.Context(),
		h.masterKeyChain,
		contextID,
		cryptoDomain.Algorithm(req.Algorithm),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapKeyToResponse(key))
}
