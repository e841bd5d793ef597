package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/safaiwalay/dispatch/internal/models"
)

type CreateUserParams struct {
	Email          string
	Name           string
	Phone          string
	Address        string
	HashedPassword string
	Role           string
}

type UpdateUserParams struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Role    string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with the email exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, p CreateUserParams) (models.User, error)

	// Get user by id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Update mutable profile fields (admin operation)
	UpdateUser(ctx context.Context, userID uuid.UUID, p UpdateUserParams) (models.User, error)

	// Soft-delete and restore; rows are never hard-deleted
	SoftDeleteUser(ctx context.Context, userID uuid.UUID, now time.Time) error
	RestoreUser(ctx context.Context, userID uuid.UUID) error

	// List users filtered by the soft-delete flag, newest first
	ListUsers(ctx context.Context, deleted bool) ([]models.User, error)
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	// Save token in repository
	Save(ctx context.Context, token models.RefreshToken) error

	// Return the token if it exists, used or not
	Get(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Mark token as used
	// If the token is already used, must not overwrite the existing 'usedAt'
	// and has to return apperrors.ErrRefreshTokenIsUsed
	MarkUsed(ctx context.Context, tokenString string, now time.Time) (time.Time, error)
}

// Cleaner profile repository interface
type CleanerRepo interface {
	// Create cleaner profile with zero balance
	CreateCleaner(ctx context.Context, userID uuid.UUID) (models.Cleaner, error)

	// Get cleaner profile for user
	// If profile not found must return apperrors.ErrCleanerNotFound
	GetCleanerByUserID(ctx context.Context, userID uuid.UUID) (models.Cleaner, error)

	// Credit increases the stored balance unconditionally
	Credit(ctx context.Context, cleanerID uuid.UUID, amount decimal.Decimal) (models.Cleaner, error)

	// Debit decreases the stored balance with a 'balance >= amount' guard
	// in the update itself. Zero rows affected means either the profile is
	// missing (apperrors.ErrCleanerNotFound) or the balance is short
	// (apperrors.ErrBalanceInsufficient)
	Debit(ctx context.Context, cleanerID uuid.UUID, amount decimal.Decimal) (models.Cleaner, error)
}

// Earnings ledger repository interface
type LedgerRepo interface {
	// Append one immutable ledger entry
	// At most one entry may exist per booking
	CreateEntry(ctx context.Context, entry models.EarningsEntry) (models.EarningsEntry, error)

	// All entries for cleaner, newest first
	ListEntries(ctx context.Context, cleanerID uuid.UUID) ([]models.EarningsEntry, error)

	// Append one immutable withdrawal record
	CreateWithdrawal(ctx context.Context, w models.Withdrawal) (models.Withdrawal, error)

	// All withdrawals for cleaner, newest first
	ListWithdrawals(ctx context.Context, cleanerID uuid.UUID) ([]models.Withdrawal, error)
}

type CreateServiceParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
}

// Service catalog repository interface
type ServiceRepo interface {
	CreateService(ctx context.Context, p CreateServiceParams) (models.Service, error)

	// If service not found must return apperrors.ErrServiceNotFound
	GetServiceByID(ctx context.Context, serviceID uuid.UUID) (models.Service, error)
	GetServiceByName(ctx context.Context, name string) (models.Service, error)

	ListServices(ctx context.Context) ([]models.Service, error)
}

type CreateBookingParams struct {
	UserID      uuid.UUID
	ServiceID   uuid.UUID
	ScheduledAt time.Time
	Address     string
	Amount      decimal.Decimal
}

// Booking repository interface
//
// Every transition method issues a single conditional update guarded by the
// required current status (and ownership where it applies). When the guard
// does not match, the row is left untouched and a domain error is returned:
// apperrors.ErrBookingNotFound, apperrors.ErrBookingAlreadyClaimed or
// apperrors.ErrInvalidTransition. A concurrent actor can therefore never
// double-apply a transition.
type BookingRepo interface {
	CreateBooking(ctx context.Context, p CreateBookingParams) (models.Booking, error)

	// If booking not found (or soft-deleted) must return apperrors.ErrBookingNotFound
	GetBooking(ctx context.Context, bookingID uuid.UUID) (models.Booking, error)

	// pending -> picked: sets cleaner and picked_at. Only valid while the
	// cleaner reference is still unset; the first successful guarded update
	// wins and the loser gets apperrors.ErrBookingAlreadyClaimed
	Claim(ctx context.Context, bookingID uuid.UUID, cleanerID uuid.UUID, now time.Time) (models.Booking, error)

	// picked -> in_progress: stamps started_at
	Start(ctx context.Context, bookingID uuid.UUID, cleanerID uuid.UUID, now time.Time) (models.Booking, error)

	// in_progress -> paused: stamps paused_at
	Pause(ctx context.Context, bookingID uuid.UUID, cleanerID uuid.UUID, now time.Time) (models.Booking, error)

	// paused -> in_progress: folds elapsed whole minutes since paused_at
	// into pause_minutes and clears paused_at
	Resume(ctx context.Context, bookingID uuid.UUID, cleanerID uuid.UUID, now time.Time) (models.Booking, error)

	// in_progress|paused -> completed: stamps completed_at and
	// payment_collected_at to the same instant
	Complete(ctx context.Context, bookingID uuid.UUID, cleanerID uuid.UUID, now time.Time) (models.Booking, error)

	// All not-deleted pending bookings, scheduled_at ascending
	ListPending(ctx context.Context) ([]models.Booking, error)

	// All not-deleted bookings owned by cleaner, scheduled_at descending
	ListByCleaner(ctx context.Context, cleanerID uuid.UUID) ([]models.Booking, error)

	// All not-deleted bookings created by user, scheduled_at descending
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error)

	// All not-deleted bookings, newest first (admin view)
	ListBookings(ctx context.Context) ([]models.Booking, error)

	// Soft-delete and restore (admin operations)
	SoftDeleteBooking(ctx context.Context, bookingID uuid.UUID, now time.Time) error
	RestoreBooking(ctx context.Context, bookingID uuid.UUID) error
}

// Storage aggregates entity repositories over one connection or transaction
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Cleaner() CleanerRepo
	Ledger() LedgerRepo
	Service() ServiceRepo
	Booking() BookingRepo

	// Run fn against a transaction-backed Storage
	InTx(ctx context.Context, fn func(Storage) error) error
}
