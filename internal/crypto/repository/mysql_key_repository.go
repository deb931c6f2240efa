package repository

import (
	"context"
	"database/sql"
	"errors"

	cryptoDomain "github.com/caretrail/phicore/internal/crypto/domain"
	"github.com/caretrail/phicore/internal/database"
	apperrors "github.com/caretrail/phicore/internal/errors"

	"github.com/google/uuid"
)

// MySQLKeyRepository implements data key persistence for MySQL.
// UUIDs are stored as CHAR(36) strings and binary fields as BLOB.
type MySQLKeyRepository struct {
	db *sql.DB
}

// NewMySQLKeyRepository creates a new MySQL data key repository.
func NewMySQLKeyRepository(db *sql.DB) *MySQLKeyRepository {
	return &MySQLKeyRepository{db: db}
}

const mysqlKeyColumns = `key_id, context_id, master_key_id, algorithm, wrapped_key, nonce, status, version, created_at, retired_at`

// Create inserts a new wrapped data key.
func (m *MySQLKeyRepository) Create(ctx context.Context, key *cryptoDomain.KeyContext) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO data_keys (` + mysqlKeyColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		key.KeyID.String(),
		key.ContextID,
		key.MasterKeyID,
		string(key.Algorithm),
		key.WrappedKey,
		key.Nonce,
		string(key.Status),
		key.Version,
		key.CreatedAt,
		key.RetiredAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create data key")
	}

	return nil
}

// GetActive retrieves the active data key for a context.
func (m *MySQLKeyRepository) GetActive(ctx context.Context, contextID string) (*cryptoDomain.KeyContext, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlKeyColumns + ` FROM data_keys
			  WHERE context_id = ? AND status = 'active'
			  ORDER BY version DESC
			  LIMIT 1`

	row := querier.QueryRowContext(ctx, query, contextID)
	key, err := scanMySQLKey(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cryptoDomain.ErrKeyContextNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get active data key")
	}

	return key, nil
}

// GetByID retrieves a data key by id regardless of status.
func (m *MySQLKeyRepository) GetByID(ctx context.Context, keyID uuid.UUID) (*cryptoDomain.KeyContext, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlKeyColumns + ` FROM data_keys WHERE key_id = ?`

	row := querier.QueryRowContext(ctx, query, keyID.String())
	key, err := scanMySQLKey(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cryptoDomain.ErrKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get data key")
	}

	return key, nil
}

// Retire marks a data key retired.
func (m *MySQLKeyRepository) Retire(ctx context.Context, keyID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE data_keys SET status = 'retired', retired_at = UTC_TIMESTAMP() WHERE key_id = ?`

	result, err := querier.ExecContext(ctx, query, keyID.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to retire data key")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check retire result")
	}
	if rows == 0 {
		return cryptoDomain.ErrKeyNotFound
	}

	return nil
}

func scanMySQLKey(row rowScanner) (*cryptoDomain.KeyContext, error) {
	var key cryptoDomain.KeyContext
	var keyID, algorithm, status string

	err := row.Scan(
		&keyID,
		&key.ContextID,
		&key.MasterKeyID,
		&algorithm,
		&key.WrappedKey,
		&key.Nonce,
		&status,
		&key.Version,
		&key.CreatedAt,
		&key.RetiredAt,
	)
	if err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(keyID)
	if err != nil {
		return nil, err
	}

	key.KeyID = parsed
	key.Algorithm = cryptoDomain.Algorithm(algorithm)
	key.Status = cryptoDomain.KeyStatus(status)
	return &key, nil
}
