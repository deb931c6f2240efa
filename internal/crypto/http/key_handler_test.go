package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/caretrail/phicore/internal/crypto/domain"
	"github.com/caretrail/phicore/internal/crypto/http/dto"
	"github.com/caretrail/phicore/internal/crypto/usecase/mocks"
)

// setupTestKeyHandler creates a test key handler with mocked dependencies.
func setupTestKeyHandler(t *testing.T) (*KeyHandler, *mocks.MockKeyProvider) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockKeyProvider := &mocks.MockKeyProvider{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewKeyHandler(mockKeyProvider, nil, logger)

	return handler, mockKeyProvider
}

func TestKeyHandler_RotateKeyHandler(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		handler, mockProvider := setupTestKeyHandler(t)

		request := dto.RotateKeyRequest{
			Algorithm: string(cryptoDomain.AESGCM),
		}

		newKey := &cryptoDomain.KeyContext{
			KeyID:     uuid.Must(uuid.NewV7()),
			ContextID: "clinical",
			Algorithm: cryptoDomain.AESGCM,
			Version:   2,
			Status:    cryptoDomain.KeyStatusActive,
			CreatedAt: time.Now().UTC(),
		}

		mockProvider.On("Rotate", mock.Anything, (*cryptoDomain.MasterKeyChain)(nil), "clinical", cryptoDomain.AESGCM).
			Return(newKey, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/keys/clinical/rotate", request)
		c.Params = gin.Params{gin.Param{Key: "context", Value: "clinical"}}

		handler.RotateKeyHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.KeyResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, newKey.KeyID.String(), response.KeyID)
		assert.Equal(t, "clinical", response.ContextID)
		assert.Equal(t, uint(2), response.Version)
		assert.Equal(t, "active", response.Status)
		mockProvider.AssertExpectations(t)
	})

	t.Run("Error_EmptyContext", func(t *testing.T) {
		handler, _ := setupTestKeyHandler(t)

		request := dto.RotateKeyRequest{
			Algorithm: string(cryptoDomain.AESGCM),
		}

		c, w := createTestContext(http.MethodPost, "/v1/keys//rotate", request)
		c.Params = gin.Params{gin.Param{Key: "context", Value: ""}}

		handler.RotateKeyHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler, _ := setupTestKeyHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/keys/clinical/rotate", nil)
		c.Request.Body = io.NopCloser(bytes.NewReader([]byte("invalid json")))
		c.Params = gin.Params{gin.Param{Key: "context", Value: "clinical"}}

		handler.RotateKeyHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_ValidationFailed_UnknownAlgorithm", func(t *testing.T) {
		handler, _ := setupTestKeyHandler(t)

		request := dto.RotateKeyRequest{
			Algorithm: "DES",
		}

		c, w := createTestContext(http.MethodPost, "/v1/keys/clinical/rotate", request)
		c.Params = gin.Params{gin.Param{Key: "context", Value: "clinical"}}

		handler.RotateKeyHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "validation_error", response["error"])
	})

	t.Run("Error_KeyStoreUnavailable", func(t *testing.T) {
		handler, mockProvider := setupTestKeyHandler(t)

		request := dto.RotateKeyRequest{
			Algorithm: string(cryptoDomain.ChaCha20),
		}

		mockProvider.On("Rotate", mock.Anything, (*cryptoDomain.MasterKeyChain)(nil), "clinical", cryptoDomain.ChaCha20).
			Return(nil, cryptoDomain.ErrKeyStoreUnavailable).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/keys/clinical/rotate", request)
		c.Params = gin.Params{gin.Param{Key: "context", Value: "clinical"}}

		handler.RotateKeyHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		mockProvider.AssertExpectations(t)
	})
}
