// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	accessDomain "github.com/caretrail/phicore/internal/access/domain"
	customValidation "github.com/caretrail/phicore/internal/validation"
)

// AuthorizeRequest contains the parameters for an audit-before-access
// authorization. The role is passed through to the RBAC policy unvalidated:
// unknown roles are denials, not bad requests.
type AuthorizeRequest struct {
	ActorID      string `json:"actor_id"`
	Role         string `json:"role"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	Action       string `json:"action"`  // "read" or "write"
	Purpose      string `json:"purpose"` // "treatment", "payment" or "operations"
}

// Validate checks if the authorize request is valid.
func (r *AuthorizeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ActorID,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Role,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.ResourceType,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.ResourceID,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Action,
			validation.Required,
			validation.By(validateAction),
		),
		validation.Field(&r.Purpose,
			validation.Required,
			validation.By(validatePurpose),
		),
	)
}

// ToAccessRequest converts the DTO to its domain form.
func (r *AuthorizeRequest) ToAccessRequest() *accessDomain.AccessRequest {
	return &accessDomain.AccessRequest{
		ActorID:      r.ActorID,
		Role:         accessDomain.Role(r.Role),
		ResourceType: r.ResourceType,
		ResourceID:   r.ResourceID,
		Action:       accessDomain.Action(r.Action),
		Purpose:      accessDomain.Purpose(r.Purpose),
	}
}

// RecordResultRequest reports the outcome of an already-authorized operation.
// EventID names the grant's outcome=attempted event; Error, when present,
// marks the operation as failed.
type RecordResultRequest struct {
	EventID      string `json:"event_id"`
	ActorID      string `json:"actor_id"`
	Role         string `json:"role"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	Action       string `json:"action"`
	Purpose      string `json:"purpose"`
	Error        string `json:"error,omitempty"`
}

// Validate checks if the record result request is valid.
func (r *RecordResultRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.EventID,
			validation.Required,
			validation.By(validateUUID),
		),
		validation.Field(&r.ActorID,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.ResourceType,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.ResourceID,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.Action,
			validation.Required,
			validation.By(validateAction),
		),
		validation.Field(&r.Purpose,
			validation.Required,
			validation.By(validatePurpose),
		),
	)
}

// ToGrant reconstructs the authorized grant this result belongs to.
func (r *RecordResultRequest) ToGrant() *accessDomain.Grant {
	return &accessDomain.Grant{
		Request: accessDomain.AccessRequest{
			ActorID:      r.ActorID,
			Role:         accessDomain.Role(r.Role),
			ResourceType: r.ResourceType,
			ResourceID:   r.ResourceID,
			Action:       accessDomain.Action(r.Action),
			Purpose:      accessDomain.Purpose(r.Purpose),
		},
		Decision: accessDomain.DecisionAuthorized,
		EventID:  uuid.MustParse(r.EventID),
	}
}

func validateAction(value any) error {
	s, _ := value.(string)
	if !accessDomain.ValidAction(accessDomain.Action(s)) {
		return validation.NewError("validation_action", "must be one of: read, write")
	}
	return nil
}

func validatePurpose(value any) error {
	s, _ := value.(string)
	if !accessDomain.ValidPurpose(accessDomain.Purpose(s)) {
		return validation.NewError(
			"validation_purpose",
			"must be one of: treatment, payment, operations",
		)
	}
	return nil
}

func validateUUID(value any) error {
	s, _ := value.(string)
	if _, err := uuid.Parse(s); err != nil {
		return validation.NewError("validation_uuid", "must be a valid UUID")
	}
	return nil
}
