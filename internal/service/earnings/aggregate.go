package earnings

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/safaiwalay/dispatch/internal/logger"
	"github.com/safaiwalay/dispatch/internal/models"
)

// SumSince totals valid ledger entries earned at or after the cutoff.
// Malformed entries (missing amount or timestamp) are skipped with a
// warning instead of failing the whole aggregate.
func SumSince(l logger.Logger, entries []models.EarningsEntry, since time.Time) decimal.Decimal {
	total := decimal.Zero

	for _, e := range entries {
		if !e.Valid() {
			l.Warn("skipping malformed ledger entry", "entryID", e.ID, "bookingID", e.BookingID)
			continue
		}
		if e.EarnedAt.Before(since) {
			continue
		}
		total = total.Add(*e.Amount)
	}

	return total
}

// CountValid reports how many entries can contribute to aggregates
func CountValid(entries []models.EarningsEntry) int {
	n := 0
	for _, e := range entries {
		if e.Valid() {
			n++
		}
	}
	return n
}
