// Package repository implements persistence for wrapped data keys.
//
// Each key context owns a versioned set of data keys: at most one active key
// per context, with retired keys kept forever so historical envelopes stay
// decryptable. Two implementations exist: PostgreSQL (native UUID, BYTEA)
// and MySQL (CHAR(36), BLOB). All methods are transaction-aware via
// database.GetTx(), which key rotation relies on for atomicity.
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

// PostgreSQLKeyRepository implements data key persistence for PostgreSQL.
type PostgreSQLKeyRepository struct {
	db *sql.DB
}

// NewPostgreSQLKeyRepository creates a new PostgreSQL data key repository.
func NewPostgreSQLKeyRepository(db *sql.DB) *PostgreSQLKeyRepository {
	return &PostgreSQLKeyRepository{db: db}
}

const pgKeyColumns = `key_id, context_id, master_key_id, algorithm, wrapped_key, nonce, status, version, created_at, retired_at`

// Create inserts a new wrapped data key.
func (p *PostgreSQLKeyRepository) Create(ctx context.Context, key *cryptoDomain.KeyContext) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO data_keys (` + pgKeyColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		key.KeyID,
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
// Returns ErrKeyContextNotFound if the context has no active key.
func (p *PostgreSQLKeyRepository) GetActive(ctx context.Context, contextID string) (*cryptoDomain.KeyContext, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgKeyColumns + ` FROM data_keys
			  WHERE context_id = $1 AND status = 'active'
			  ORDER BY version DESC
			  LIMIT 1`

	row := querier.QueryRowContext(ctx, query, contextID)
	key, err := scanKey(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cryptoDomain.ErrKeyContextNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get active data key")
	}

	return key, nil
}

// GetByID retrieves a data key by id regardless of status.
// Returns ErrKeyNotFound for unknown ids.
func (p *PostgreSQLKeyRepository) GetByID(ctx context.Context, keyID uuid.UUID) (*cryptoDomain.KeyContext, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgKeyColumns + ` FROM data_keys WHERE key_id = $1`

	row := querier.QueryRowContext(ctx, query, keyID)
	key, err := scanKey(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cryptoDomain.ErrKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get data key")
	}

	return key, nil
}

// Retire marks a data key retired. Part of the rotation transaction; the
// row is never deleted.
func (p *PostgreSQLKeyRepository) Retire(ctx context.Context, keyID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE data_keys SET status = 'retired', retired_at = NOW() WHERE key_id = $1`

	result, err := querier.ExecContext(ctx, query, keyID)
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

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanKey(row rowScanner) (*cryptoDomain.KeyContext, error) {
	var key cryptoDomain.KeyContext
	var algorithm, status string

	err := row.Scan(
		&key.KeyID,
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

	key.Algorithm = cryptoDomain.Algorithm(algorithm)
	key.Status = cryptoDomain.KeyStatus(status)
	return &key, nil
}
