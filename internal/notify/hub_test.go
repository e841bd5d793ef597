package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub(t *testing.T) {
	t.Parallel()

	t.Run("delivers to matching table only", func(t *testing.T) {
		hub := NewHub(nil)
		bookings, cancelBookings := hub.Subscribe(TableBookings)
		defer cancelBookings()
		payments, cancelPayments := hub.Subscribe(TablePayments)
		defer cancelPayments()

		hub.Publish(Event{Table: TableBookings, Action: ActionCreated, Row: "b1"})

		event := <-bookings
		assert.Equal(t, ActionCreated, event.Action)
		assert.Equal(t, "b1", event.Row)
		assert.Empty(t, payments, "payment subscriber must not see booking events")
	})

	t.Run("cancel closes the channel", func(t *testing.T) {
		hub := NewHub(nil)
		events, cancel := hub.Subscribe(TableBookings)

		cancel()

		_, ok := <-events
		require.False(t, ok, "channel should be closed after cancel")

		// Cancel twice is safe
		cancel()

		// Publishing after cancel must not panic or block
		hub.Publish(Event{Table: TableBookings, Action: ActionUpdated})
	})

	t.Run("slow subscriber drops events instead of blocking", func(t *testing.T) {
		hub := NewHub(nil)
		events, cancel := hub.Subscribe(TableBookings)
		defer cancel()

		// Overflow the buffer; Publish must return every time
		for i := 0; i < 100; i++ {
			hub.Publish(Event{Table: TableBookings, Action: ActionUpdated, Row: i})
		}

		// The buffered prefix survives
		event := <-events
		assert.Equal(t, 0, event.Row)
	})
}
