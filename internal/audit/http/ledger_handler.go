// Package http provides HTTP handlers for reading and verifying the audit
// ledger. The ledger has no write endpoint: events enter only through the
// access gate and the verifier.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/caretrail/phicore/internal/audit/domain"
	"github.com/caretrail/phicore/internal/audit/http/dto"
	auditUseCase "github.com/caretrail/phicore/internal/audit/usecase"
	"github.com/caretrail/phicore/internal/httputil"
)

// LedgerHandler handles HTTP requests for ledger reads and verification.
type LedgerHandler struct {
	ledger   auditUseCase.Ledger
	verifier auditUseCase.Verifier
	logger   *slog.Logger
}

// NewLedgerHandler creates a new ledger handler with required dependencies.
func NewLedgerHandler(
	ledger auditUseCase.Ledger,
	verifier auditUseCase.Verifier,
	logger *slog.Logger,
) *LedgerHandler {
	return &LedgerHandler{
		ledger:   ledger,
		verifier: verifier,
		logger:   logger,
	}
}

// ListEventsHandler returns a page of ledger entries in chain order.
// GET /v1/ledger/events?offset=0&limit=50
// Returns 200 OK with the events whose 0-based indexes fall in
// [offset, offset+limit).
func (h *LedgerHandler) ListEventsHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	start := uint64(offset)
	end := start + uint64(limit)

	events := make([]*auditDomain.AuditEvent, 0, limit)
	for event, err := range h.ledger.ReadRange(c.Request.Context(), start, end) {
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		events = append(events, event)
	}

	c.JSON(http.StatusOK, dto.MapEventsToListResponse(events))
}

// VerifyChainHandler recomputes the hash chain over a range and reports the
// first divergence, recording any break as a security_violation event.
// GET /v1/ledger/verify?start=0&end=0 (end=0 means through the tail)
// Returns 200 OK with the integrity report; the report's ok field carries the
// verdict, not the status code.
func (h *LedgerHandler) VerifyChainHandler(c *gin.Context) {
	start, err := parseIndexParam(c, "start", 0)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	end, err := parseIndexParam(c, "end", 0)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if end != 0 && end <= start {
		httputil.HandleBadRequestGin(
			c,
			fmt.Errorf("end must be greater than start"),
			h.logger,
		)
		return
	}

	report, err := h.verifier.Verify(c.Request.Context(), start, end)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapReportToResponse(report))
}

func parseIndexParam(c *gin.Context, name string, fallback uint64) (uint64, error) {
	raw := c.DefaultQuery(name, strconv.FormatUint(fallback, 10))
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter: must be a non-negative integer", name)
	}
	return value, nil
}
