package domain

// Action distinguishes reads from writes so the audit trail records the
// correct event type.
type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

// Role is the actor's asserted role. The set is closed; an unknown role is
// treated as a denial by the RBAC policy, never as a crash.
type Role string

const (
	RoleClinician    Role = "clinician"
	RoleNurse        Role = "nurse"
	RoleBillingClerk Role = "billing_clerk"
	RoleAuditor      Role = "auditor"
	RoleAdmin        Role = "admin"
)

// Purpose is the declared reason for a PHI operation. The set is closed:
// values outside it never reach the audit trail.
type Purpose string

const (
	PurposeTreatment  Purpose = "treatment"
	PurposePayment    Purpose = "payment"
	PurposeOperations Purpose = "operations"
)

// Decision is the terminal state of an authorization request.
type Decision string

const (
	// DecisionAuthorized means the audit event is durably recorded and the
	// PHI operation may proceed.
	DecisionAuthorized Decision = "authorized"

	// DecisionDenied means permission was refused or could not be
	// established. An outcome=denied or outcome=failed event was recorded
	// when the audit trail was reachable.
	DecisionDenied Decision = "denied"

	// DecisionAuditUnavailable means permission was granted but the audit
	// event could not be durably recorded, so the PHI operation must not
	// proceed.
	DecisionAuditUnavailable Decision = "audit_unavailable"
)

var validRoles = map[Role]struct{}{
	RoleClinician:    {},
	RoleNurse:        {},
	RoleBillingClerk: {},
	RoleAuditor:      {},
	RoleAdmin:        {},
}

var validActions = map[Action]struct{}{
	ActionRead:  {},
	ActionWrite: {},
}

var validPurposes = map[Purpose]struct{}{
	PurposeTreatment:  {},
	PurposePayment:    {},
	PurposeOperations: {},
}

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	_, ok := validRoles[r]
	return ok
}

// ValidAction reports whether a is a known action.
func ValidAction(a Action) bool {
	_, ok := validActions[a]
	return ok
}

// ValidPurpose reports whether p is a known purpose.
func ValidPurpose(p Purpose) bool {
	_, ok := validPurposes[p]
	return ok
}
