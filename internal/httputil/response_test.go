package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/caretrail/phicore/internal/errors"
)

func TestHandleErrorGin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody string
	}{
		{
			name:         "not found",
			err:          apperrors.Wrap(apperrors.ErrNotFound, "event"),
			expectedCode: http.StatusNotFound,
			expectedBody: "not_found",
		},
		{
			name:         "conflict",
			err:          apperrors.ErrConflict,
			expectedCode: http.StatusConflict,
			expectedBody: "conflict",
		},
		{
			name:         "invalid input",
			err:          apperrors.Wrap(apperrors.ErrInvalidInput, "bad range"),
			expectedCode: http.StatusUnprocessableEntity,
			expectedBody: "invalid_input",
		},
		{
			name:         "unauthorized",
			err:          apperrors.ErrUnauthorized,
			expectedCode: http.StatusUnauthorized,
			expectedBody: "unauthorized",
		},
		{
			name:         "forbidden",
			err:          apperrors.Wrap(apperrors.ErrForbidden, "access denied"),
			expectedCode: http.StatusForbidden,
			expectedBody: "forbidden",
		},
		{
			name:         "unavailable",
			err:          apperrors.Wrap(apperrors.ErrUnavailable, "audit trail unreachable"),
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: "service_unavailable",
		},
		{
			name:         "unknown errors hide details",
			err:          apperrors.New("database exploded"),
			expectedCode: http.StatusInternalServerError,
			expectedBody: "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			HandleErrorGin(c, tt.err, nil)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			if tt.expectedCode == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "database exploded")
			}
		})
	}
}

func TestHandleBadRequestGin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleBadRequestGin(c, apperrors.New("malformed json"), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "bad_request")
}

func TestHandleValidationErrorGin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleValidationErrorGin(c, apperrors.New("field_type: cannot be blank"), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")
}
