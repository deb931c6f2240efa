package domain

import (
	"github.com/google/uuid"
)

// AccessRequest is a caller's intent to read or write PHI belonging to a
// resource. It identifies the actor and the declared purpose; the role
// taxonomy itself lives in the RBAC collaborator, not here.
type AccessRequest struct {
	ActorID      string
	Role         Role
	ResourceType string
	ResourceID   string
	Action       Action
	Purpose      Purpose
}

// Validate checks the closed sets and required identifiers at the boundary.
// The role is deliberately not validated here: an unknown role is a policy
// denial, not a malformed request.
func (r *AccessRequest) Validate() error {
	switch {
	case r.ActorID == "",
		r.ResourceType == "",
		r.ResourceID == "":
		return ErrRequestInvalid
	case !ValidAction(r.Action):
		return ErrRequestInvalid
	case !ValidPurpose(r.Purpose):
		return ErrRequestInvalid
	}
	return nil
}

// Grant is the result of an authorization attempt. EventID names the audit
// event that recorded the attempt; it is set whenever an event was durably
// stored, including on denials.
type Grant struct {
	Request  AccessRequest
	Decision Decision
	EventID  uuid.UUID
}

// Authorized reports whether the PHI operation may proceed.
func (g *Grant) Authorized() bool {
	return g.Decision == DecisionAuthorized
}
