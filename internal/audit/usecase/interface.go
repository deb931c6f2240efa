package usecase

import (
	"context"
	"iter"

	auditDomain "github.com/caretrail/phicore/internal/audit/domain"
)

// LedgerRepository is the persistence contract for the append-only ledger.
// Positions are 1-based and assigned by the database.
type LedgerRepository interface {
	Insert(ctx context.Context, event *auditDomain.AuditEvent) (uint64, error)
	GetTail(ctx context.Context) (*auditDomain.AuditEvent, error)
	GetRange(ctx context.Context, startPos, endPos uint64) ([]*auditDomain.AuditEvent, error)
	Count(ctx context.Context) (uint64, error)
}

// Ledger appends events to the hash chain and verifies it. Indexes exposed
// here are 0-based; ReadRange and VerifyChain take a half-open [start, end)
// interval, with end == 0 meaning through the current tail.
type Ledger interface {
	Append(ctx context.Context, event *auditDomain.AuditEvent) (*auditDomain.AuditEvent, error)
	ReadRange(ctx context.Context, start, end uint64) iter.Seq2[*auditDomain.AuditEvent, error]
	VerifyChain(ctx context.Context, start, end uint64) (*auditDomain.IntegrityReport, error)
	Count(ctx context.Context) (uint64, error)
}

// EventBus is the single write path into the ledger. Publish is synchronous:
// it returns only after the event is durably appended or retries are
// exhausted.
type EventBus interface {
	Publish(ctx context.Context, event *auditDomain.AuditEvent) (*auditDomain.AuditEvent, error)
}

// Verifier runs chain verification and records any divergence it finds as a
// security_violation event.
type Verifier interface {
	Verify(ctx context.Context, start, end uint64) (*auditDomain.IntegrityReport, error)
}
