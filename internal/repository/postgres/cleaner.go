package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/safaiwalay/dispatch/internal/apperrors"
	"github.com/safaiwalay/dispatch/internal/models"
)

type CleanerRepo struct {
	DB DBTX
}

const createCleaner = `-- name: CreateCleaner
INSERT INTO cleaners (id, user_id, balance)
VALUES ($1, $2, 0)
RETURNING id, user_id, created_at, balance
`

func (r *CleanerRepo) CreateCleaner(ctx context.Context, userID uuid.UUID) (models.Cleaner, error) {
	rows, _ := r.DB.Query(ctx, createCleaner, uuid.New(), userID)
	cleaner, err := pgx.CollectOneRow(rows, rowToCleaner)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return cleaner, fmt.Errorf("cleaner profile already exists: %w", err)
		}
		return cleaner, fmt.Errorf("db error: %w", err)
	}

	return cleaner, nil
}

const getCleanerByUserID = `-- name: GetCleanerByUserID
SELECT id, user_id, created_at, balance FROM cleaners
WHERE user_id = $1
`

func (r *CleanerRepo) GetCleanerByUserID(ctx context.Context, userID uuid.UUID) (models.Cleaner, error) {
	rows, _ := r.DB.Query(ctx, getCleanerByUserID, userID)
	cleaner, err := pgx.CollectOneRow(rows, rowToCleaner)

	switch {
	case err == nil:
		return cleaner, nil
	case errors.Is(err, pgx.ErrNoRows):
		return cleaner, apperrors.ErrCleanerNotFound
	default:
		return cleaner, fmt.Errorf("db error: %w", err)
	}
}

const creditCleaner = `-- name: CreditCleaner
UPDATE cleaners
SET balance = balance + $2
WHERE id = $1
RETURNING id, user_id, created_at, balance
`

func (r *CleanerRepo) Credit(ctx context.Context, cleanerID uuid.UUID, amount decimal.Decimal) (models.Cleaner, error) {
	rows, _ := r.DB.Query(ctx, creditCleaner, cleanerID, amount)
	cleaner, err := pgx.CollectOneRow(rows, rowToCleaner)

	switch {
	case err == nil:
		return cleaner, nil
	case errors.Is(err, pgx.ErrNoRows):
		return cleaner, apperrors.ErrCleanerNotFound
	default:
		return cleaner, fmt.Errorf("db error: %w", err)
	}
}

// The guard lives in the update itself so two concurrent withdrawals can
// never both pass a stale balance check
const debitCleaner = `-- name: DebitCleaner
UPDATE cleaners
SET balance = balance - $2
WHERE id = $1 AND balance >= $2
RETURNING id, user_id, created_at, balance
`

func (r *CleanerRepo) Debit(ctx context.Context, cleanerID uuid.UUID, amount decimal.Decimal) (models.Cleaner, error) {
	rows, _ := r.DB.Query(ctx, debitCleaner, cleanerID, amount)
	cleaner, err := pgx.CollectOneRow(rows, rowToCleaner)

	switch {
	case err == nil:
		return cleaner, nil
	case errors.Is(err, pgx.ErrNoRows):
		// Zero rows: either no profile or not enough balance, tell them apart
		if _, getErr := r.getByID(ctx, cleanerID); getErr != nil {
			return cleaner, getErr
		}
		return cleaner, apperrors.ErrBalanceInsufficient
	default:
		return cleaner, fmt.Errorf("db error: %w", err)
	}
}

const getCleanerByID = `-- name: GetCleanerByID
SELECT id, user_id, created_at, balance FROM cleaners
WHERE id = $1
`

func (r *CleanerRepo) getByID(ctx context.Context, cleanerID uuid.UUID) (models.Cleaner, error) {
	rows, _ := r.DB.Query(ctx, getCleanerByID, cleanerID)
	cleaner, err := pgx.CollectOneRow(rows, rowToCleaner)

	switch {
	case err == nil:
		return cleaner, nil
	case errors.Is(err, pgx.ErrNoRows):
		return cleaner, apperrors.ErrCleanerNotFound
	default:
		return cleaner, fmt.Errorf("db error: %w", err)
	}
}

func rowToCleaner(row pgx.CollectableRow) (models.Cleaner, error) {
	var c models.Cleaner
	err := row.Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.Balance)
	return c, err
}
