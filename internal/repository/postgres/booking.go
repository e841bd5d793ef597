package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/safaiwalay/dispatch/internal/apperrors"
	"github.com/safaiwalay/dispatch/internal/models"
	"github.com/safaiwalay/dispatch/internal/repository"
)

type BookingRepo struct {
	DB DBTX
}

const bookingColumns = `id, created_at, user_id, service_id, cleaner_id, status, scheduled_at, address, amount,
picked_at, started_at, paused_at, completed_at, payment_collected_at, pause_minutes, is_deleted, deleted_at`

const createBooking = `-- name: CreateBooking
INSERT INTO bookings (id, user_id, service_id, status, scheduled_at, address, amount)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + bookingColumns

func (r *BookingRepo) CreateBooking(ctx context.Context, p repository.CreateBookingParams) (models.Booking, error) {
	rows, _ := r.DB.Query(ctx, createBooking, uuid.New(), p.UserID, p.ServiceID, models.BookingStatusPending, p.ScheduledAt, p.Address, p.Amount)
	booking, err := pgx.CollectOneRow(rows, rowToBooking)
	if err != nil {
		return booking, fmt.Errorf("db error: %w", err)
	}
	return booking, nil
}

const getBooking = `-- name: GetBooking
SELECT ` + bookingColumns + ` FROM bookings
WHERE id = $1
`

func (r *BookingRepo) GetBooking(ctx context.Context, bookingID uuid.UUID) (models.Booking, error) {
	booking, err := r.get(ctx, bookingID)
	if err != nil {
		return booking, err
	}
	if booking.IsDeleted {
		return booking, apperrors.ErrBookingNotFound
	}
	return booking, nil
}

// Every transition below is one conditional update: the guard status (and
// ownership) sits in the WHERE clause, so of two concurrent actors exactly
// one sees a row affected. Zero rows affected is resolved into a domain
// error by re-reading the row, never applied silently.

const claimBooking = `-- name: ClaimBooking
UPDATE bookings
SET cleaner_id = $2, status = $3, picked_at = $4
WHERE id = $1 AND status = $5 AND cleaner_id IS NULL AND NOT is_deleted
RETURNING ` + bookingColumns

func (r *BookingRepo) Claim(ctx context.Context, bookingID uuid.UUID, cleanerID uuid.UUID, now time.Time) (models.Booking, error) {
	rows, _ := r.DB.Query(ctx, claimBooking, bookingID, cleanerID, models.BookingStatusPicked, now, models.BookingStatusPending)
	booking, err := pgx.CollectOneRow(rows, rowToBooking)

	switch {
	case err == nil:
		return booking, nil
	case errors.Is(err, pgx.ErrNoRows):
		return booking, r.claimError(ctx, bookingID)
	default:
		return booking, fmt.Errorf("db error: %w", err)
	}
}

const startBooking = `-- name: StartBooking
UPDATE bookings
SET status = $3, started_at = $4
WHERE id = $1 AND cleaner_id = $2 AND status = $5 AND NOT is_deleted
RETURNING ` + bookingColumns

func (r *BookingRepo) Start(ctx context.Context, bookingID uuid.UUID, cleanerID uuid.UUID, now time.Time) (models.Booking, error) {
	rows, _ := r.DB.Query(ctx, startBooking, bookingID, cleanerID, models.BookingStatusInProgress, now, models.BookingStatusPicked)
	return r.collectTransition(ctx, rows, bookingID, cleanerID)
}

const pauseBooking = `-- name: PauseBooking
UPDATE bookings
SET status = $3, paused_at = $4
WHERE id = $1 AND cleaner_id = $2 AND status = $5 AND NOT is_deleted
RETURNING ` + bookingColumns

func (r *BookingRepo) Pause(ctx context.Context, bookingID uuid.UUID, cleanerID uuid.UUID, now time.Time) (models.Booking, error) {
	rows, _ := r.DB.Query(ctx, pauseBooking, bookingID, cleanerID, models.BookingStatusPaused, now, models.BookingStatusInProgress)
	return r.collectTransition(ctx, rows, bookingID, cleanerID)
}

// Elapsed whole minutes since paused_at fold into pause_minutes; the
// computation runs inside the same guarded update so a racing resume can't
// count the pause twice
const resumeBooking = `-- name: ResumeBooking
UPDATE bookings
SET status = $3,
    pause_minutes = pause_minutes + FLOOR(EXTRACT(EPOCH FROM ($4::timestamptz - paused_at)) / 60)::bigint,
    paused_at = NULL
WHERE id = $1 AND cleaner_id = $2 AND status = $5 AND NOT is_deleted
RETURNING ` + bookingColumns

func (r *BookingRepo) Resume(ctx context.Context, bookingID uuid.UUID, cleanerID uuid.UUID, now time.Time) (models.Booking, error) {
	rows, _ := r.DB.Query(ctx, resumeBooking, bookingID, cleanerID, models.BookingStatusInProgress, now, models.BookingStatusPaused)
	return r.collectTransition(ctx, rows, bookingID, cleanerID)
}

const completeBooking = `-- name: CompleteBooking
UPDATE bookings
SET status = $3, completed_at = $4, payment_collected_at = $4
WHERE id = $1 AND cleaner_id = $2 AND status = ANY($5) AND NOT is_deleted
RETURNING ` + bookingColumns

func (r *BookingRepo) Complete(ctx context.Context, bookingID uuid.UUID, cleanerID uuid.UUID, now time.Time) (models.Booking, error) {
	fromStatuses := []string{models.BookingStatusInProgress, models.BookingStatusPaused}
	rows, _ := r.DB.Query(ctx, completeBooking, bookingID, cleanerID, models.BookingStatusCompleted, now, fromStatuses)
	return r.collectTransition(ctx, rows, bookingID, cleanerID)
}

const listPending = `-- name: ListPendingBookings
SELECT ` + bookingColumns + ` FROM bookings
WHERE status = $1 AND NOT is_deleted
ORDER BY scheduled_at ASC
`

func (r *BookingRepo) ListPending(ctx context.Context) ([]models.Booking, error) {
	rows, _ := r.DB.Query(ctx, listPending, models.BookingStatusPending)
	return collectBookings(rows)
}

const listByCleaner = `-- name: ListBookingsByCleaner
SELECT ` + bookingColumns + ` FROM bookings
WHERE cleaner_id = $1 AND NOT is_deleted
ORDER BY scheduled_at DESC
`

func (r *BookingRepo) ListByCleaner(ctx context.Context, cleanerID uuid.UUID) ([]models.Booking, error) {
	rows, _ := r.DB.Query(ctx, listByCleaner, cleanerID)
	return collectBookings(rows)
}

const listByUser = `-- name: ListBookingsByUser
SELECT ` + bookingColumns + ` FROM bookings
WHERE user_id = $1 AND NOT is_deleted
ORDER BY scheduled_at DESC
`

func (r *BookingRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	rows, _ := r.DB.Query(ctx, listByUser, userID)
	return collectBookings(rows)
}

const listBookings = `-- name: ListBookings
SELECT ` + bookingColumns + ` FROM bookings
WHERE NOT is_deleted
ORDER BY created_at DESC
`

func (r *BookingRepo) ListBookings(ctx context.Context) ([]models.Booking, error) {
	rows, _ := r.DB.Query(ctx, listBookings)
	return collectBookings(rows)
}

const softDeleteBooking = `-- name: SoftDeleteBooking
UPDATE bookings
SET is_deleted = true, deleted_at = $2
WHERE id = $1 AND NOT is_deleted
`

func (r *BookingRepo) SoftDeleteBooking(ctx context.Context, bookingID uuid.UUID, now time.Time) error {
	tag, err := r.DB.Exec(ctx, softDeleteBooking, bookingID, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrBookingNotFound
	}
	return nil
}

const restoreBooking = `-- name: RestoreBooking
UPDATE bookings
SET is_deleted = false, deleted_at = NULL
WHERE id = $1 AND is_deleted
`

func (r *BookingRepo) RestoreBooking(ctx context.Context, bookingID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, restoreBooking, bookingID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrBookingNotFound
	}
	return nil
}

// get returns the raw row, deleted or not
func (r *BookingRepo) get(ctx context.Context, bookingID uuid.UUID) (models.Booking, error) {
	rows, _ := r.DB.Query(ctx, getBooking, bookingID)
	booking, err := pgx.CollectOneRow(rows, rowToBooking)

	switch {
	case err == nil:
		return booking, nil
	case errors.Is(err, pgx.ErrNoRows):
		return booking, apperrors.ErrBookingNotFound
	default:
		return booking, fmt.Errorf("db error: %w", err)
	}
}

// claimError explains why a claim update touched no rows
func (r *BookingRepo) claimError(ctx context.Context, bookingID uuid.UUID) error {
	booking, err := r.get(ctx, bookingID)
	switch {
	case err != nil:
		return err
	case booking.IsDeleted:
		return apperrors.ErrBookingNotFound
	case booking.CleanerID != nil || booking.Status != models.BookingStatusPending:
		return apperrors.ErrBookingAlreadyClaimed
	default:
		return apperrors.ErrInvalidTransition
	}
}

// collectTransition turns an owned-transition result into a booking or a
// domain error explaining the lost race
func (r *BookingRepo) collectTransition(ctx context.Context, rows pgx.Rows, bookingID uuid.UUID, cleanerID uuid.UUID) (models.Booking, error) {
	booking, err := pgx.CollectOneRow(rows, rowToBooking)

	switch {
	case err == nil:
		return booking, nil
	case errors.Is(err, pgx.ErrNoRows):
		return booking, r.transitionError(ctx, bookingID, cleanerID)
	default:
		return booking, fmt.Errorf("db error: %w", err)
	}
}

func (r *BookingRepo) transitionError(ctx context.Context, bookingID uuid.UUID, cleanerID uuid.UUID) error {
	booking, err := r.get(ctx, bookingID)
	switch {
	case err != nil:
		return err
	case booking.IsDeleted:
		return apperrors.ErrBookingNotFound
	case booking.CleanerID == nil || *booking.CleanerID != cleanerID:
		// Not this cleaner's job, don't leak its state
		return apperrors.ErrBookingNotFound
	default:
		return apperrors.ErrInvalidTransition
	}
}

func collectBookings(rows pgx.Rows) ([]models.Booking, error) {
	bookings, err := pgx.CollectRows(rows, rowToBooking)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return bookings, nil
}

func rowToBooking(row pgx.CollectableRow) (models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.CreatedAt, &b.UserID, &b.ServiceID, &b.CleanerID,
		&b.Status, &b.ScheduledAt, &b.Address, &b.Amount,
		&b.PickedAt, &b.StartedAt, &b.PausedAt, &b.CompletedAt, &b.PaymentCollectedAt,
		&b.PauseMinutes, &b.IsDeleted, &b.DeletedAt,
	)
	return b, err
}
