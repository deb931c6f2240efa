package dto

import (
	"github.com/google/uuid"

	accessDomain "github.com/caretrail/phicore/internal/access/domain"
)

// AuthorizeResponse reports the authorization decision. EventID names the
// audit event that recorded the attempt when one was durably stored.
type AuthorizeResponse struct {
	Decision string `json:"decision"`
	EventID  string `json:"event_id,omitempty"`
}

// MapGrantToResponse converts a domain grant to its API representation.
func MapGrantToResponse(grant *accessDomain.Grant) AuthorizeResponse {
	response := AuthorizeResponse{
		Decision: string(grant.Decision),
	}
	if grant.EventID != uuid.Nil {
		response.EventID = grant.EventID.String()
	}
	return response
}
