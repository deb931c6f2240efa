package usecase

import (
	"context"

	auditDomain "github.com/caretrail/phicore/internal/audit/domain"
	apperrors "github.com/caretrail/phicore/internal/errors"
)

// verifier runs chain verification and, when the chain has diverged, records
// the finding as a new correctly-chained security_violation event. Detection
// is flagged in the ledger itself rather than halting writes: the tail of the
// chain keeps accumulating evidence.
type verifier struct {
	ledger Ledger
	bus    EventBus
}

// Verify checks the chain over [start, end) and publishes a
// security_violation event if the chain is broken. The report is returned in
// either case.
func (v *verifier) Verify(
	ctx context.Context,
	start, end uint64,
) (*auditDomain.IntegrityReport, error) {
	report, err := v.ledger.VerifyChain(ctx, start, end)
	if err != nil {
		return nil, err
	}

	if report.OK {
		return report, nil
	}

	violation := &auditDomain.AuditEvent{
		EventType:          auditDomain.EventTypeSecurityViolation,
		ActorID:            "integrity-verifier",
		ResourceType:       "audit_ledger",
		ResourceID:         "chain",
		Purpose:            "operations",
		Outcome:            auditDomain.OutcomeFailed,
		DataClassification: "internal",
		Details: map[string]any{
			"first_bad_index": *report.FirstBadIndex,
			"range_start":     report.Start,
			"range_end":       report.End,
			"checked_count":   report.CheckedCount,
		},
	}

	if _, err := v.bus.Publish(ctx, violation); err != nil {
		return report, apperrors.Wrap(err, "failed to record integrity violation")
	}

	return report, nil
}

// NewVerifier creates a new Verifier reading from ledger and recording
// violations through bus.
func NewVerifier(ledger Ledger, bus EventBus) Verifier {
	return &verifier{ledger: ledger, bus: bus}
}
