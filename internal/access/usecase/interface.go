package usecase

import (
	"context"

	accessDomain "github.com/caretrail/phicore/internal/access/domain"
)

// RBACService is the external permission collaborator. Check returns whether
// the actor may perform the request, with a short machine-readable reason on
// refusal. A non-nil error means the check itself could not be performed and
// is treated as a denial by the gate.
type RBACService interface {
	Check(ctx context.Context, request *accessDomain.AccessRequest) (bool, string, error)
}

// Gate enforces audit-before-access: a PHI operation may run only after
// Authorize returns a grant whose audit event is durably stored.
type Gate interface {
	Authorize(ctx context.Context, request *accessDomain.AccessRequest) (*accessDomain.Grant, error)
	RecordResult(ctx context.Context, grant *accessDomain.Grant, opErr error) error
}
