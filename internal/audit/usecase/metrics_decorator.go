package usecase

import (
	"context"
	"time"

	auditDomain "github.com/caretrail/phicore/internal/audit/domain"
	"github.com/caretrail/phicore/internal/metrics"
)

// eventBusWithMetrics decorates EventBus with metrics instrumentation.
type eventBusWithMetrics struct {
	next    EventBus
	metrics metrics.BusinessMetrics
}

// NewEventBusWithMetrics wraps an EventBus with metrics recording.
func NewEventBusWithMetrics(bus EventBus, m metrics.BusinessMetrics) EventBus {
	return &eventBusWithMetrics{
		next:    bus,
		metrics: m,
	}
}

func (b *eventBusWithMetrics) Publish(
	ctx context.Context,
	event *auditDomain.AuditEvent,
) (*auditDomain.AuditEvent, error) {
	start := time.Now()
	stored, err := b.next.Publish(ctx, event)

	status := "success"
	if err != nil {
		status = "error"
	}

	b.metrics.RecordOperation(ctx, "audit", "publish", status)
	b.metrics.RecordDuration(ctx, "audit", "publish", time.Since(start), status)

	return stored, err
}

// verifierWithMetrics decorates Verifier with metrics instrumentation.
type verifierWithMetrics struct {
	next    Verifier
	metrics metrics.BusinessMetrics
}

// NewVerifierWithMetrics wraps a Verifier with metrics recording.
func NewVerifierWithMetrics(verifier Verifier, m metrics.BusinessMetrics) Verifier {
	return &verifierWithMetrics{
		next:    verifier,
		metrics: m,
	}
}

// Verify records metrics labeled by the verification verdict: a completed
// run that finds a broken chain is "broken", not "error".
func (v *verifierWithMetrics) Verify(
	ctx context.Context,
	start, end uint64,
) (*auditDomain.IntegrityReport, error) {
	began := time.Now()
	report, err := v.next.Verify(ctx, start, end)

	status := "success"
	switch {
	case err != nil:
		status = "error"
	case report != nil && !report.OK:
		status = "broken"
	}

	v.metrics.RecordOperation(ctx, "audit", "verify_chain", status)
	v.metrics.RecordDuration(ctx, "audit", "verify_chain", time.Since(began), status)

	return report, err
}
