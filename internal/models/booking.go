package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	BookingStatusPending    = "pending"
	BookingStatusPicked     = "picked"
	BookingStatusInProgress = "in_progress"
	BookingStatusPaused     = "paused"
	BookingStatusCompleted  = "completed"
)

// Booking is one unit of purchasable cleaning work.
// CleanerID stays nil until the booking is claimed and never changes after.
// CompletedAt and PaymentCollectedAt are set together, once, to the same
// instant. PausedAt is non-nil iff status is exactly 'paused'.
type Booking struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UserID    uuid.UUID
	ServiceID uuid.UUID
	CleanerID *uuid.UUID

	Status      string
	ScheduledAt time.Time
	Address     string
	Amount      decimal.Decimal

	PickedAt           *time.Time
	StartedAt          *time.Time
	PausedAt           *time.Time
	CompletedAt        *time.Time
	PaymentCollectedAt *time.Time

	// Whole minutes spent paused over all closed pause/resume cycles.
	// Monotonically non-decreasing, updated only on resume.
	PauseMinutes int64

	IsDeleted bool
	DeletedAt *time.Time
}
