package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	auditDomain "github.com/caretrail/phicore/internal/audit/domain"
	"github.com/caretrail/phicore/internal/database"
	apperrors "github.com/caretrail/phicore/internal/errors"
)

// MySQLLedgerRepository implements append-only audit event persistence for
// MySQL. UUIDs are stored as CHAR(36) strings.
type MySQLLedgerRepository struct {
	db *sql.DB
}

// NewMySQLLedgerRepository creates a new MySQL ledger repository.
func NewMySQLLedgerRepository(db *sql.DB) *MySQLLedgerRepository {
	return &MySQLLedgerRepository{db: db}
}

const mysqlEventColumns = `position, event_id, occurred_at, event_type, actor_id, resource_type, resource_id, purpose, outcome, details, data_classification, prev_hash, log_hash`

// Insert appends an event at the ledger tail and returns its assigned
// position. The event must already carry prev_hash and log_hash.
func (m *MySQLLedgerRepository) Insert(
	ctx context.Context,
	event *auditDomain.AuditEvent,
) (uint64, error) {
	querier := database.GetTx(ctx, m.db)

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
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := querier.ExecContext(
		ctx,
		query,
		event.EventID.String(),
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
	)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to insert audit event")
	}

	position, err := result.LastInsertId()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read audit event position")
	}

	return uint64(position), nil
}

// GetTail retrieves the most recent event, locking it when called inside a
// transaction. Returns auditDomain.ErrEventNotFound on an empty ledger.
func (m *MySQLLedgerRepository) GetTail(ctx context.Context) (*auditDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlEventColumns + ` FROM audit_events
			  ORDER BY position DESC
			  LIMIT 1
			  FOR UPDATE`

	event, err := scanEventMySQL(querier.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auditDomain.ErrEventNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get ledger tail")
	}

	return event, nil
}

// GetRange retrieves events with positions in [startPos, endPos] in ledger order.
func (m *MySQLLedgerRepository) GetRange(
	ctx context.Context,
	startPos, endPos uint64,
) ([]*auditDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlEventColumns + ` FROM audit_events
			  WHERE position >= ? AND position <= ?
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
		event, err := scanEventMySQL(rows)
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

// Count returns the number of events in the ledger.
func (m *MySQLLedgerRepository) Count(ctx context.Context) (uint64, error) {
	querier := database.GetTx(ctx, m.db)

	var count uint64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_events`).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count audit events")
	}

	return count, nil
}

func scanEventMySQL(row eventScanner) (*auditDomain.AuditEvent, error) {
	var event auditDomain.AuditEvent
	var eventID, eventType, outcome string
	var detailsJSON []byte

	err := row.Scan(
		&event.Position,
		&eventID,
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

	parsed, err := uuid.Parse(eventID)
	if err != nil {
		return nil, err
	}

	event.EventID = parsed
	event.EventType = auditDomain.EventType(eventType)
	event.Outcome = auditDomain.Outcome(outcome)

	if detailsJSON != nil {
		if err := json.Unmarshal(detailsJSON, &event.Details); err != nil {
			return nil, err
		}
	}

	return &event, nil
}
