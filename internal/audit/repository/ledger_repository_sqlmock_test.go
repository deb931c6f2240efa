package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/caretrail/phicore/internal/audit/domain"
	"github.com/caretrail/phicore/internal/audit/repository"
)

// These tests run without a database: they pin down the error mapping and
// parameter handling of the PostgreSQL repository against a mocked driver.

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db, mock
}

func TestPostgreSQLLedgerRepositoryErrorMapping(t *testing.T) {
	ctx := context.Background()

	t.Run("GetTail maps no rows to event not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := repository.NewPostgreSQLLedgerRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetTail(ctx)
		assert.ErrorIs(t, err, auditDomain.ErrEventNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insert passes nil details as NULL", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := repository.NewPostgreSQLLedgerRepository(db)

		event := newTestAuditEvent(auditDomain.GenesisHash)
		event.Details = nil
		logHash, err := event.ComputeLogHash()
		require.NoError(t, err)
		event.LogHash = logHash

		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO audit_events`)).
			WithArgs(
				event.EventID, event.Timestamp, string(event.EventType),
				event.ActorID, event.ResourceType, event.ResourceID,
				event.Purpose, string(event.Outcome), []byte(nil),
				event.DataClassification, event.PrevHash, event.LogHash,
			).
			WillReturnRows(sqlmock.NewRows([]string{"position"}).AddRow(int64(1)))

		position, err := repo.Insert(ctx, event)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), position)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insert surfaces driver errors", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := repository.NewPostgreSQLLedgerRepository(db)

		event := newTestAuditEvent(auditDomain.GenesisHash)
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO audit_events`)).
			WillReturnError(assert.AnError)

		_, err := repo.Insert(ctx, event)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("GetRange surfaces row iteration errors", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := repository.NewPostgreSQLLedgerRepository(db)

		rows := sqlmock.NewRows([]string{"position"}).
			AddRow(int64(1)).
			RowError(0, assert.AnError)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).WillReturnRows(rows)

		_, err := repo.GetRange(ctx, 1, 10)
		assert.Error(t, err)
	})
}
