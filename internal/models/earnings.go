package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EarningsEntry is one immutable ledger record: money earned by a cleaner
// for a completed booking. Amount and EarnedAt are pointers because the
// ledger must tolerate malformed historical rows; aggregation skips them.
type EarningsEntry struct {
	ID        uuid.UUID
	CleanerID uuid.UUID
	BookingID uuid.UUID
	Amount    *decimal.Decimal
	Service   string
	EarnedAt  *time.Time
}

// Valid reports whether the entry can contribute to an aggregate.
func (e EarningsEntry) Valid() bool {
	return e.Amount != nil && e.EarnedAt != nil
}

// Withdrawal is an immutable audit record of a cleaner's claim against
// their balance.
type Withdrawal struct {
	ID        uuid.UUID
	CleanerID uuid.UUID
	CreatedAt time.Time
	Amount    decimal.Decimal
}
