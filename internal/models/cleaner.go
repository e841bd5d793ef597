package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cleaner is the work profile attached to a user with the cleaner role.
// Balance is the stored earnings balance; it always equals the sum of
// ledger entries minus the sum of withdrawals.
type Cleaner struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	Balance   decimal.Decimal
}
