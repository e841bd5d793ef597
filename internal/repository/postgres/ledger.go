package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/safaiwalay/dispatch/internal/apperrors"
	"github.com/safaiwalay/dispatch/internal/models"
)

type LedgerRepo struct {
	DB DBTX
}

const createEntry = `-- name: CreateLedgerEntry
INSERT INTO earnings (id, cleaner_id, booking_id, amount, service, earned_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, cleaner_id, booking_id, amount, service, earned_at
`

func (r *LedgerRepo) CreateEntry(ctx context.Context, entry models.EarningsEntry) (models.EarningsEntry, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createEntry, entry.ID, entry.CleanerID, entry.BookingID, entry.Amount, entry.Service, entry.EarnedAt)
	created, err := pgx.CollectOneRow(rows, rowToEntry)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch {
			case pgErr.Code == pgerrcode.UniqueViolation:
				// One entry per completed booking, the unique index is the invariant
				return created, fmt.Errorf("ledger entry already exists for booking: %w", err)
			case pgErr.Code == pgerrcode.ForeignKeyViolation:
				return created, apperrors.ErrCleanerNotFound
			}
		}
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const listEntries = `-- name: ListLedgerEntries
SELECT id, cleaner_id, booking_id, amount, service, earned_at
FROM earnings
WHERE cleaner_id = $1
ORDER BY earned_at DESC NULLS LAST
`

func (r *LedgerRepo) ListEntries(ctx context.Context, cleanerID uuid.UUID) ([]models.EarningsEntry, error) {
	rows, _ := r.DB.Query(ctx, listEntries, cleanerID)
	entries, err := pgx.CollectRows(rows, rowToEntry)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entries, nil
}

const createWithdrawal = `-- name: CreateWithdrawal
INSERT INTO withdrawals (id, cleaner_id, created_at, amount)
VALUES ($1, $2, $3, $4)
RETURNING id, cleaner_id, created_at, amount
`

func (r *LedgerRepo) CreateWithdrawal(ctx context.Context, w models.Withdrawal) (models.Withdrawal, error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}

	rows, _ := r.DB.Query(ctx, createWithdrawal, w.ID, w.CleanerID, w.CreatedAt, w.Amount)
	created, err := pgx.CollectOneRow(rows, rowToWithdrawal)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return created, apperrors.ErrCleanerNotFound
		}
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const listWithdrawals = `-- name: ListWithdrawals
SELECT id, cleaner_id, created_at, amount
FROM withdrawals
WHERE cleaner_id = $1
ORDER BY created_at DESC
`

func (r *LedgerRepo) ListWithdrawals(ctx context.Context, cleanerID uuid.UUID) ([]models.Withdrawal, error) {
	rows, _ := r.DB.Query(ctx, listWithdrawals, cleanerID)
	withdrawals, err := pgx.CollectRows(rows, rowToWithdrawal)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return withdrawals, nil
}

func rowToEntry(row pgx.CollectableRow) (models.EarningsEntry, error) {
	var e models.EarningsEntry
	err := row.Scan(&e.ID, &e.CleanerID, &e.BookingID, &e.Amount, &e.Service, &e.EarnedAt)
	return e, err
}

func rowToWithdrawal(row pgx.CollectableRow) (models.Withdrawal, error) {
	var w models.Withdrawal
	err := row.Scan(&w.ID, &w.CleanerID, &w.CreatedAt, &w.Amount)
	return w, err
}
