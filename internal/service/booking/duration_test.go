package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/safaiwalay/dispatch/internal/models"
)

func ts(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func tsPtr(t *testing.T, value string) *time.Time {
	t.Helper()

	parsed := ts(t, value)
	return &parsed
}

func TestWorkingDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		booking models.Booking
		now     string
		want    time.Duration
	}{
		{
			name:    "never started",
			booking: models.Booking{Status: models.BookingStatusPicked},
			now:     "2025-03-01T12:00:00Z",
			want:    0,
		},
		{
			name: "running with no pauses",
			booking: models.Booking{
				Status:    models.BookingStatusInProgress,
				StartedAt: tsPtr(t, "2025-03-01T10:00:00Z"),
			},
			now:  "2025-03-01T10:45:00Z",
			want: 45 * time.Minute,
		},
		{
			name: "completed after one closed pause",
			booking: models.Booking{
				Status:       models.BookingStatusCompleted,
				StartedAt:    tsPtr(t, "2025-03-01T10:00:00Z"),
				CompletedAt:  tsPtr(t, "2025-03-01T11:05:00Z"),
				PauseMinutes: 5,
			},
			now:  "2025-03-01T23:00:00Z",
			want: 60 * time.Minute,
		},
		{
			name: "paused right now subtracts the open pause",
			booking: models.Booking{
				Status:       models.BookingStatusPaused,
				StartedAt:    tsPtr(t, "2025-03-01T10:00:00Z"),
				PausedAt:     tsPtr(t, "2025-03-01T10:30:00Z"),
				PauseMinutes: 10,
			},
			now:  "2025-03-01T10:50:00Z",
			want: 20 * time.Minute,
		},
		{
			name: "clamped at zero",
			booking: models.Booking{
				Status:       models.BookingStatusInProgress,
				StartedAt:    tsPtr(t, "2025-03-01T10:00:00Z"),
				PauseMinutes: 120,
			},
			now:  "2025-03-01T10:30:00Z",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := WorkingDuration(tt.booking, ts(t, tt.now))
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMergeCurrentOrders(t *testing.T) {
	t.Parallel()

	idA := uuid.New()
	idB := uuid.New()
	idC := uuid.New()

	pending := []models.Booking{
		{ID: idA, Status: models.BookingStatusPending, ScheduledAt: ts(t, "2025-03-02T09:00:00Z")},
		{ID: idB, Status: models.BookingStatusPending, ScheduledAt: ts(t, "2025-03-01T09:00:00Z")},
	}
	mine := []models.Booking{
		// Duplicate of a pending row must not appear twice
		{ID: idB, Status: models.BookingStatusPending, ScheduledAt: ts(t, "2025-03-01T09:00:00Z")},
		{ID: idC, Status: models.BookingStatusInProgress, ScheduledAt: ts(t, "2025-03-03T09:00:00Z")},
		// Settled job is history, not current work
		{
			ID:                 uuid.New(),
			Status:             models.BookingStatusCompleted,
			ScheduledAt:        ts(t, "2025-02-01T09:00:00Z"),
			PaymentCollectedAt: tsPtr(t, "2025-02-01T11:00:00Z"),
		},
	}

	merged := MergeCurrentOrders(pending, mine)

	require.Len(t, merged, 3)
	require.Equal(t, []uuid.UUID{idB, idA, idC}, []uuid.UUID{merged[0].ID, merged[1].ID, merged[2].ID})
}

func TestFilterHistory(t *testing.T) {
	t.Parallel()

	older := models.Booking{
		ID:                 uuid.New(),
		Status:             models.BookingStatusCompleted,
		CompletedAt:        tsPtr(t, "2025-02-01T11:00:00Z"),
		PaymentCollectedAt: tsPtr(t, "2025-02-01T11:00:00Z"),
	}
	newer := models.Booking{
		ID:                 uuid.New(),
		Status:             models.BookingStatusCompleted,
		CompletedAt:        tsPtr(t, "2025-02-05T11:00:00Z"),
		PaymentCollectedAt: tsPtr(t, "2025-02-05T11:00:00Z"),
	}
	unfinished := models.Booking{
		ID:     uuid.New(),
		Status: models.BookingStatusInProgress,
	}

	history := FilterHistory([]models.Booking{older, unfinished, newer})

	require.Len(t, history, 2)
	require.Equal(t, newer.ID, history[0].ID)
	require.Equal(t, older.ID, history[1].ID)
}
