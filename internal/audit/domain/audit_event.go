// Package domain defines the audit ledger domain model: hash-chained,
// append-only audit events and the integrity report produced by chain
// verification.
//
// Each event's log_hash covers the previous event's log_hash plus a
// canonical encoding of the event body, so any retroactive edit breaks every
// subsequent link. Events are created once and never mutated or deleted; the
// only lifecycle operation after creation is being read for verification or
// reporting.
package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditEvent is one entry in the ledger.
//
// Position is the storage sequence number assigned at append time; it is not
// part of the hashed body since the chain itself fixes the order.
type AuditEvent struct {
	Position           uint64
	EventID            uuid.UUID
	Timestamp          time.Time
	EventType          EventType
	ActorID            string
	ResourceType       string
	ResourceID         string
	Purpose            string
	Outcome            Outcome
	Details            map[string]any // free-form non-PHI context
	DataClassification string
	PrevHash           string
	LogHash            string
}

// Validate checks the event against the closed sets and required attributes.
// Events are validated at the module boundary; nothing invalid reaches the
// ledger.
func (e *AuditEvent) Validate() error {
	if !ValidEventType(e.EventType) {
		return ErrEventInvalid
	}
	if !ValidOutcome(e.Outcome) {
		return ErrEventInvalid
	}
	if e.ActorID == "" || e.ResourceType == "" || e.ResourceID == "" {
		return ErrEventInvalid
	}
	return nil
}

// canonicalBytes converts the event body (everything except log_hash) to a
// canonical byte representation for hashing. Variable-length fields are
// length-prefixed to prevent ambiguity between adjacent values.
func (e *AuditEvent) canonicalBytes() ([]byte, error) {
	buf := make([]byte, 0, 1024)

	buf = append(buf, e.EventID[:]...)

	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(e.Timestamp.UTC().UnixNano()))
	buf = append(buf, timeBytes...)

	buf = appendLengthPrefixed(buf, []byte(e.EventType))
	buf = appendLengthPrefixed(buf, []byte(e.ActorID))
	buf = appendLengthPrefixed(buf, []byte(e.ResourceType))
	buf = appendLengthPrefixed(buf, []byte(e.ResourceID))
	buf = appendLengthPrefixed(buf, []byte(e.Purpose))
	buf = appendLengthPrefixed(buf, []byte(e.Outcome))

	if e.Details != nil {
		detailsBytes, err := json.Marshal(e.Details)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal details: %w", err)
		}
		buf = appendLengthPrefixed(buf, detailsBytes)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	buf = appendLengthPrefixed(buf, []byte(e.DataClassification))
	buf = appendLengthPrefixed(buf, []byte(e.PrevHash))

	return buf, nil
}

// ComputeLogHash returns the hex SHA-256 chain hash for this event:
// H(prev_hash ‖ canonical(event body)). PrevHash must already be set.
func (e *AuditEvent) ComputeLogHash() (string, error) {
	canonical, err := e.canonicalBytes()
	if err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write([]byte(e.PrevHash))
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyLogHash recomputes the chain hash from the stored body and compares
// it with the stored log_hash.
func (e *AuditEvent) VerifyLogHash() (bool, error) {
	expected, err := e.ComputeLogHash()
	if err != nil {
		return false, err
	}
	return expected == e.LogHash, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
// Panics if data length exceeds uint32 max to prevent integer overflow.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	dataLen := len(data)
	if dataLen > 0xFFFFFFFF {
		panic("data length exceeds uint32 max")
	}
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(dataLen))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}
