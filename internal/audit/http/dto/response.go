// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	auditDomain "github.com/caretrail/phicore/internal/audit/domain"
)

// AuditEventResponse represents one ledger entry in API responses.
type AuditEventResponse struct {
	Position           uint64         `json:"position"`
	EventID            string         `json:"event_id"`
	Timestamp          time.Time      `json:"timestamp"`
	EventType          string         `json:"event_type"`
	ActorID            string         `json:"actor_id"`
	ResourceType       string         `json:"resource_type"`
	ResourceID         string         `json:"resource_id"`
	Purpose            string         `json:"purpose"`
	Outcome            string         `json:"outcome"`
	Details            map[string]any `json:"details,omitempty"`
	DataClassification string         `json:"data_classification"`
	PrevHash           string         `json:"prev_hash"`
	LogHash            string         `json:"log_hash"`
}

// MapEventToResponse converts a domain audit event to its API representation.
func MapEventToResponse(event *auditDomain.AuditEvent) AuditEventResponse {
	return AuditEventResponse{
		Position:           event.Position,
		EventID:            event.EventID.String(),
		Timestamp:          event.Timestamp,
		EventType:          string(event.EventType),
		ActorID:            event.ActorID,
		ResourceType:       event.ResourceType,
		ResourceID:         event.ResourceID,
		Purpose:            event.Purpose,
		Outcome:            string(event.Outcome),
		Details:            event.Details,
		DataClassification: event.DataClassification,
		PrevHash:           event.PrevHash,
		LogHash:            event.LogHash,
	}
}

// ListEventsResponse represents a paginated slice of the ledger.
type ListEventsResponse struct {
	Data []AuditEventResponse `json:"data"`
}

// MapEventsToListResponse converts a slice of domain events to a list response.
func MapEventsToListResponse(events []*auditDomain.AuditEvent) ListEventsResponse {
	data := make([]AuditEventResponse, 0, len(events))
	for _, event := range events {
		data = append(data, MapEventToResponse(event))
	}

	return ListEventsResponse{
		Data: data,
	}
}

// IntegrityReportResponse represents a chain verification result.
type IntegrityReportResponse struct {
	OK            bool    `json:"ok"`
	Start         uint64  `json:"start"`
	End           uint64  `json:"end"`
	CheckedCount  uint64  `json:"checked_count"`
	FirstBadIndex *uint64 `json:"first_bad_index,omitempty"`
}

// MapReportToResponse converts a domain integrity report to its API representation.
func MapReportToResponse(report *auditDomain.IntegrityReport) IntegrityReportResponse {
	return IntegrityReportResponse{
		OK:            report.OK,
		Start:         report.Start,
		End:           report.End,
		CheckedCount:  report.CheckedCount,
		FirstBadIndex: report.FirstBadIndex,
	}
}
