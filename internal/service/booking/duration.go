package booking

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/safaiwalay/dispatch/internal/models"
)

// WorkingDuration reports how long the cleaner actually worked on the
// booking: wall time since started_at minus closed pause minutes, minus
// the currently open pause if the booking is paused right now. The result
// never goes below zero.
//
// A booking that was never started reports zero.
func WorkingDuration(b models.Booking, now time.Time) time.Duration {
	if b.StartedAt == nil {
		return 0
	}

	end := now
	if b.CompletedAt != nil {
		end = *b.CompletedAt
	}

	d := end.Sub(*b.StartedAt)
	d -= time.Duration(b.PauseMinutes) * time.Minute

	if b.Status == models.BookingStatusPaused && b.PausedAt != nil {
		d -= end.Sub(*b.PausedAt)
	}

	if d < 0 {
		return 0
	}
	return d
}

// MergeCurrentOrders joins unclaimed pending bookings with the cleaner's
// own unfinished work, deduplicated by id and sorted by scheduled_at
// ascending. A booking counts as unfinished until payment is collected.
func MergeCurrentOrders(pending []models.Booking, mine []models.Booking) []models.Booking {
	merged := make([]models.Booking, 0, len(pending)+len(mine))
	seen := make(map[uuid.UUID]struct{}, len(pending)+len(mine))

	add := func(b models.Booking) {
		if _, ok := seen[b.ID]; ok {
			return
		}
		seen[b.ID] = struct{}{}
		merged = append(merged, b)
	}

	for _, b := range pending {
		add(b)
	}
	for _, b := range mine {
		if b.PaymentCollectedAt != nil {
			continue
		}
		add(b)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].ScheduledAt.Before(merged[j].ScheduledAt)
	})

	return merged
}

// FilterHistory keeps only settled bookings, most recently completed first
func FilterHistory(bookings []models.Booking) []models.Booking {
	history := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.PaymentCollectedAt == nil {
			continue
		}
		history = append(history, b)
	}

	sort.SliceStable(history, func(i, j int) bool {
		ti, tj := history[i].CompletedAt, history[j].CompletedAt
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})

	return history
}
