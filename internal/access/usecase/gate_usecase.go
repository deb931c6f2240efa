package usecase

import (
	"context"
	"errors"
	"fmt"

	accessDomain "github.com/caretrail/phicore/internal/access/domain"
	auditDomain "github.com/caretrail/phicore/internal/audit/domain"
	auditUseCase "github.com/caretrail/phicore/internal/audit/usecase"
	apperrors "github.com/caretrail/phicore/internal/errors"
)

// gateUseCase implements Gate. The request walks a fixed path: permission
// check, then durable audit append, and only then authorization. There is no
// ordering in which PHI is touched before the audit trail has the event.
type gateUseCase struct {
	rbac RBACService
	bus  auditUseCase.EventBus
}

// Authorize runs the audit-before-access sequence for a request.
//
// Denials and permission-check failures are themselves recorded in the audit
// trail before the denial is returned. When permission is granted, the grant
// takes effect only after an outcome=attempted event is durably stored: if
// the store is unreachable the decision is DecisionAuditUnavailable and the
// caller must not touch PHI.
func (g *gateUseCase) Authorize(
	ctx context.Context,
	request *accessDomain.AccessRequest,
) (*accessDomain.Grant, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	allowed, reason, err := g.rbac.Check(ctx, request)
	if err != nil {
		// The permission check itself broke: deny, never guess.
		return g.deny(ctx, request, auditDomain.OutcomeFailed,
			map[string]any{"error": err.Error()},
			apperrors.Wrap(accessDomain.ErrAccessDenied, "permission check failed"))
	}
	if !allowed {
		details := map[string]any{}
		if reason != "" {
			details["reason"] = reason
		}
		return g.deny(ctx, request, auditDomain.OutcomeDenied, details, accessDomain.ErrAccessDenied)
	}

	stored, err := g.bus.Publish(ctx, g.newEvent(request, auditDomain.OutcomeAttempted, nil))
	if err != nil {
		grant := &accessDomain.Grant{
			Request:  *request,
			Decision: accessDomain.DecisionAuditUnavailable,
		}
		return grant, apperrors.Wrap(err, "audit trail unreachable, access withheld")
	}

	return &accessDomain.Grant{
		Request:  *request,
		Decision: accessDomain.DecisionAuthorized,
		EventID:  stored.EventID,
	}, nil
}

// RecordResult publishes the follow-up outcome for an already-authorized
// operation: allowed on success, failed otherwise. Access was granted before
// this call, so a publish failure is reported but revokes nothing.
func (g *gateUseCase) RecordResult(
	ctx context.Context,
	grant *accessDomain.Grant,
	opErr error,
) error {
	if !grant.Authorized() {
		return fmt.Errorf("no follow-up for decision %q", grant.Decision)
	}

	outcome := auditDomain.OutcomeAllowed
	details := map[string]any{"granted_event_id": grant.EventID.String()}
	if opErr != nil {
		outcome = auditDomain.OutcomeFailed
		details["error"] = opErr.Error()
	}

	if _, err := g.bus.Publish(ctx, g.newEvent(&grant.Request, outcome, details)); err != nil {
		return apperrors.Wrap(err, "failed to record operation result")
	}

	return nil
}

// deny records the refusal in the audit trail and returns the denial. The
// caller is refused either way, so an unreachable audit trail does not mask
// the denial; the publish failure is surfaced alongside it.
func (g *gateUseCase) deny(
	ctx context.Context,
	request *accessDomain.AccessRequest,
	outcome auditDomain.Outcome,
	details map[string]any,
	denial error,
) (*accessDomain.Grant, error) {
	grant := &accessDomain.Grant{
		Request:  *request,
		Decision: accessDomain.DecisionDenied,
	}

	stored, err := g.bus.Publish(ctx, g.newEvent(request, outcome, details))
	if err != nil {
		return grant, errors.Join(denial, err)
	}

	grant.EventID = stored.EventID
	return grant, denial
}

func (g *gateUseCase) newEvent(
	request *accessDomain.AccessRequest,
	outcome auditDomain.Outcome,
	details map[string]any,
) *auditDomain.AuditEvent {
	eventType := auditDomain.EventTypePHIAccess
	if request.Action == accessDomain.ActionWrite {
		eventType = auditDomain.EventTypePHIWrite
	}

	return &auditDomain.AuditEvent{
		EventType:          eventType,
		ActorID:            request.ActorID,
		ResourceType:       request.ResourceType,
		ResourceID:         request.ResourceID,
		Purpose:            string(request.Purpose),
		Outcome:            outcome,
		Details:            details,
		DataClassification: "phi",
	}
}

// NewGateUseCase creates a new Gate checking permissions through rbac and
// recording events through bus.
func NewGateUseCase(rbac RBACService, bus auditUseCase.EventBus) Gate {
	return &gateUseCase{rbac: rbac, bus: bus}
}
