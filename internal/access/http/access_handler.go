// Package http provides HTTP handlers for the audit-before-access gate.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	accessDomain "github.com/caretrail/phicore/internal/access/domain"
	"github.com/caretrail/phicore/internal/access/http/dto"
	accessUseCase "github.com/caretrail/phicore/internal/access/usecase"
	auditDomain "github.com/caretrail/phicore/internal/audit/domain"
	"github.com/caretrail/phicore/internal/httputil"
	customValidation "github.com/caretrail/phicore/internal/validation"
)

// AccessHandler handles HTTP requests for PHI access authorization.
type AccessHandler struct {
	gate   accessUseCase.Gate
	logger *slog.Logger
}

// NewAccessHandler creates a new access handler with required dependencies.
func NewAccessHandler(gate accessUseCase.Gate, logger *slog.Logger) *AccessHandler {
	return &AccessHandler{
		gate:   gate,
		logger: logger,
	}
}

// AuthorizeHandler runs the audit-before-access sequence for a request.
// POST /v1/access/authorize
// Returns 200 OK when authorized, 403 Forbidden on denial and 503 Service
// Unavailable when the audit trail could not record the attempt. The decision
// body is included in every case so callers can log the event id.
func (h *AccessHandler) AuthorizeHandler(c *gin.Context) {
	var req dto.AuthorizeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	grant, err := h.gate.Authorize(c.Request.Context(), req.ToAccessRequest())
	if err != nil {
		switch {
		case grant != nil && grant.Decision == accessDomain.DecisionDenied:
			h.logger.Info("access denied",
				slog.String("actor_id", req.ActorID),
				slog.String("resource_id", req.ResourceID),
			)
			c.JSON(http.StatusForbidden, dto.MapGrantToResponse(grant))
		case grant != nil && grant.Decision == accessDomain.DecisionAuditUnavailable:
			h.logger.Error("audit trail unavailable, access withheld",
				slog.String("actor_id", req.ActorID),
				slog.Any("error", err),
			)
			c.JSON(http.StatusServiceUnavailable, dto.MapGrantToResponse(grant))
		default:
			httputil.HandleErrorGin(c, err, h.logger)
		}
		return
	}

	c.JSON(http.StatusOK, dto.MapGrantToResponse(grant))
}

// RecordResultHandler records the follow-up outcome of an authorized
// operation: allowed on success, failed when the request reports an error.
// POST /v1/access/result
// Returns 202 Accepted once the outcome event is durably stored.
func (h *AccessHandler) RecordResultHandler(c *gin.Context) {
	var req dto.RecordResultRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	var opErr error
	if req.Error != "" {
		opErr = errors.New(req.Error)
	}

	if err := h.gate.RecordResult(c.Request.Context(), req.ToGrant(), opErr); err != nil {
		if errors.Is(err, auditDomain.ErrAuditUnavailable) {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusAccepted)
}
