package domain

import (
	apperrors "github.com/caretrail/phicore/internal/errors"
)

var (
	// ErrEventInvalid indicates an event outside the closed event type or
	// outcome sets, or one missing required attributes.
	ErrEventInvalid = apperrors.Wrap(apperrors.ErrInvalidInput, "audit event is invalid")

	// ErrAuditWriteFailure indicates a single failed append attempt. The
	// event bus retries these with backoff before giving up.
	ErrAuditWriteFailure = apperrors.New("audit write failed")

	// ErrAuditUnavailable indicates the ledger could not durably record an
	// event after bounded retries. Callers must treat this as a denial of
	// the guarded operation.
	ErrAuditUnavailable = apperrors.Wrap(apperrors.ErrUnavailable, "audit ledger unavailable")

	// ErrEventNotFound indicates a requested ledger position does not exist.
	ErrEventNotFound = apperrors.Wrap(apperrors.ErrNotFound, "audit event not found")

	// ErrInvalidRange indicates a verification or read range with end before
	// start or beyond the ledger tail.
	ErrInvalidRange = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid ledger range")
)
