package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is a catalog entry: a cleaning service customers can book.
type Service struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	Name        string
	Description string
	Price       decimal.Decimal
}
