package usecase

import (
	"context"
	"time"

	accessDomain "github.com/caretrail/phicore/internal/access/domain"
	"github.com/caretrail/phicore/internal/metrics"
)

// gateWithMetrics decorates Gate with metrics instrumentation.
type gateWithMetrics struct {
	next    Gate
	metrics metrics.BusinessMetrics
}

// NewGateWithMetrics wraps a Gate with metrics recording.
func NewGateWithMetrics(gate Gate, m metrics.BusinessMetrics) Gate {
	return &gateWithMetrics{
		next:    gate,
		metrics: m,
	}
}

// Authorize records metrics for authorization decisions, labeled by the
// decision rather than success/error so denials and audit outages are
// distinguishable on a dashboard.
func (g *gateWithMetrics) Authorize(
	ctx context.Context,
	request *accessDomain.AccessRequest,
) (*accessDomain.Grant, error) {
	start := time.Now()
	grant, err := g.next.Authorize(ctx, request)

	status := "error"
	if grant != nil {
		status = string(grant.Decision)
	}

	g.metrics.RecordOperation(ctx, "access", "authorize", status)
	g.metrics.RecordDuration(ctx, "access", "authorize", time.Since(start), status)

	return grant, err
}

// RecordResult records metrics for follow-up outcome publication.
func (g *gateWithMetrics) RecordResult(
	ctx context.Context,
	grant *accessDomain.Grant,
	opErr error,
) error {
	start := time.Now()
	err := g.next.RecordResult(ctx, grant, opErr)

	status := "success"
	if err != nil {
		status = "error"
	}

	g.metrics.RecordOperation(ctx, "access", "record_result", status)
	g.metrics.RecordDuration(ctx, "access", "record_result", time.Since(start), status)

	return err
}
