package domain

// EventType classifies an audit event. The set is closed: events outside it
// are rejected at the module boundary instead of being stored.
type EventType string

const (
	// EventTypePHIAccess records a read of protected health information.
	EventTypePHIAccess EventType = "phi_access"

	// EventTypePHIWrite records a write of protected health information.
	EventTypePHIWrite EventType = "phi_write"

	// EventTypeKeyRotation records a data key rotation.
	EventTypeKeyRotation EventType = "key_rotation"

	// EventTypeSecurityViolation records a detected integrity failure, such
	// as a hash chain break or an envelope that failed authentication.
	EventTypeSecurityViolation EventType = "security_violation"
)

// Outcome is the result of the operation an audit event records.
type Outcome string

const (
	// OutcomeAttempted is recorded before an authorized PHI operation runs.
	OutcomeAttempted Outcome = "attempted"

	// OutcomeAllowed is the follow-up after a PHI operation succeeded.
	OutcomeAllowed Outcome = "allowed"

	// OutcomeDenied records a permission denial.
	OutcomeDenied Outcome = "denied"

	// OutcomeFailed records an operation that failed after authorization,
	// or an internal failure treated as a denial.
	OutcomeFailed Outcome = "failed"
)

// GenesisHash is the prev_hash of the first ledger entry.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// validEventTypes and validOutcomes fix the closed sets checked at the
// module boundary.
var validEventTypes = map[EventType]struct{}{
	EventTypePHIAccess:         {},
	EventTypePHIWrite:          {},
	EventTypeKeyRotation:       {},
	EventTypeSecurityViolation: {},
}

var validOutcomes = map[Outcome]struct{}{
	OutcomeAttempted: {},
	OutcomeAllowed:   {},
	OutcomeDenied:    {},
	OutcomeFailed:    {},
}

// ValidEventType reports whether t belongs to the closed event type set.
func ValidEventType(t EventType) bool {
	_, ok := validEventTypes[t]
	return ok
}

// ValidOutcome reports whether o belongs to the closed outcome set.
func ValidOutcome(o Outcome) bool {
	_, ok := validOutcomes[o]
	return ok
}
