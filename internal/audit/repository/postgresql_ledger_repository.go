// Package repository provides database implementations of audit ledger
// persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	auditDomain "github.com/caretrail/phicore/internal/audit/domain"
	"github.com/caretrail/phicore/internal/database"
	apperrors "github.com/caretrail/phicore/internal/errors"
)

// PostgreSQLLedgerRepository implements append-only audit event persistence
// for PostgreSQL. Uses native UUID types with transaction support via
// database.GetTx().
//
// The table exposes no update or delete path; the only writes are inserts at
// the tail.
type PostgreSQLLedgerRepository struct {
	db *sql.DB
}

// NewPostgreSQLLedgerRepository creates a new PostgreSQL ledger repository.
func NewPostgreSQLLedgerRepository(db *sql.DB) *PostgreSQLLedgerRepository {
	return &PostgreSQLLedgerRepository{db: db}
}

const pgEventColumns = `position, event_id, occurred_at, event_type, actor_id, resource_type, resource_id, purpose, outcome, details, data_classification, prev_hash, log_hash`

// Insert appends an event at the ledger tail and returns its assigned
// position. The event must already carry prev_hash and log_hash.
func (p *PostgreSQLLedgerRepository) Insert(
	ctx context.Context,
	event *auditDomain.AuditEvent,
) (uint64, error) {
	querier := database.GetTx(ctx, p.db)

	var detailsJSON []byte
	var err error
	if event.Details != nil {
		detailsJSON, err = json.Marshal(event.Details)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to marshal audit event details")
		}
	}

	query := `INSERT INTO audit_events
			  (event_id, occurred_at, event_type, actor_id, resource_type, resource_id, purpose, outcome, details, data_classification, prev_hash, log_hash)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			  RETURNING position`

	var position uint64
	err = querier.QueryRowContext(
		ctx,
		query,
		event.EventID,
		event.Timestamp,
		string(event.EventType),
		event.ActorID,
		event.ResourceType,
		event.ResourceID,
		event.Purpose,
		string(event.Outcome),
		detailsJSON,
		event.DataClassification,
		event.PrevHash,
		event.LogHash,
	).Scan(&position)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to insert audit event")
	}

	return position, nil
}

// GetTail retrieves the most recent event. When called inside a transaction
// the tail row is locked until commit, so concurrent appends across
// processes cannot compute prev_hash from a stale tail.
// Returns auditDomain.ErrEventNotFound on an empty ledger.
func (p *PostgreSQLLedgerRepository) GetTail(ctx context.Context) (*auditDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgEventColumns + ` FROM audit_events
			  ORDER BY position DESC
			  LIMIT 1
			  FOR UPDATE`

	event, err := scanEvent(querier.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auditDomain.ErrEventNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get ledger tail")
	}

	return event, nil
}

// GetRange retrieves events with positions in [startPos, endPos] in ledger
// order. Positions are the 1-based storage sequence.
func (p *PostgreSQLLedgerRepository) GetRange(
	ctx context.Context,
	startPos, endPos uint64,
) ([]*auditDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgEventColumns + ` FROM audit_events
			  WHERE position >= $1 AND position <= $2
			  ORDER BY position ASC`

	rows, err := querier.QueryContext(ctx, query, startPos, endPos)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read ledger range")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*auditDomain.AuditEvent, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit event")
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}

	return events, nil
}

// Count returns the number of events in the ledger, which is also the
// position of the tail.
func (p *PostgreSQLLedgerRepository) Count(ctx context.Context) (uint64, error) {
	querier := database.GetTx(ctx, p.db)

	var count uint64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_events`).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit events")
	}

	return count, nil
}

// eventScanner covers *sql.Row and *sql.Rows.
type eventScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row eventScanner) (*auditDomain.AuditEvent, error) {
	var event auditDomain.AuditEvent
	var eventType, outcome string
	var detailsJSON []byte

	err := row.Scan(
		&event.Position,
		&event.EventID,
		&event.Timestamp,
		&eventType,
		&event.ActorID,
		&event.ResourceType,
		&event.ResourceID,
		&event.Purpose,
		&outcome,
		&detailsJSON,
		&event.DataClassification,
		&event.PrevHash,
		&event.LogHash,
	)
	if err != nil {
		return nil, err
	}

	event.EventType = auditDomain.EventType(eventType)
	event.Outcome = auditDomain.Outcome(outcome)

	if detailsJSON != nil {
		if err := json.Unmarshal(detailsJSON, &event.Details); err != nil {
			return nil, err
		}
	}

	return &event, nil
}
