// Package service provides the built-in policy implementation of the RBAC
// collaborator. Deployments with an external permission service supply their
// own usecase.RBACService instead.
package service

import (
	"context"

	accessDomain "github.com/caretrail/phicore/internal/access/domain"
)

// permission is one (action, purpose) pair a role may exercise.
type permission struct {
	action  accessDomain.Action
	purpose accessDomain.Purpose
}

// defaultPolicy maps each role to the operations it may perform. Anything
// absent is denied.
var defaultPolicy = map[accessDomain.Role][]permission{
	accessDomain.RoleClinician: {
		{accessDomain.ActionRead, accessDomain.PurposeTreatment},
		{accessDomain.ActionWrite, accessDomain.PurposeTreatment},
	},
	accessDomain.RoleNurse: {
		{accessDomain.ActionRead, accessDomain.PurposeTreatment},
		{accessDomain.ActionWrite, accessDomain.PurposeTreatment},
	},
	accessDomain.RoleBillingClerk: {
		{accessDomain.ActionRead, accessDomain.PurposePayment},
	},
	accessDomain.RoleAuditor: {
		{accessDomain.ActionRead, accessDomain.PurposeOperations},
	},
	accessDomain.RoleAdmin: {
		{accessDomain.ActionRead, accessDomain.PurposeOperations},
	},
}

// PolicyRBACService answers permission checks from a static role policy.
type PolicyRBACService struct {
	policy map[accessDomain.Role][]permission
}

// NewPolicyRBACService creates an RBAC service with the default role policy.
func NewPolicyRBACService() *PolicyRBACService {
	return &PolicyRBACService{policy: defaultPolicy}
}

// Check reports whether the request's role may perform its action for its
// purpose. Unknown roles are denials, not errors.
func (s *PolicyRBACService) Check(
	_ context.Context,
	request *accessDomain.AccessRequest,
) (bool, string, error) {
	permissions, ok := s.policy[request.Role]
	if !ok {
		return false, "unknown_role", nil
	}

	for _, p := range permissions {
		if p.action == request.Action && p.purpose == request.Purpose {
			return true, "", nil
		}
	}

	return false, "role_not_permitted", nil
}
