// Package notify is an in-process change-notification fan-out for dashboard
// clients. Delivery is best effort: no ordering guarantee, slow subscribers
// are dropped, and clients are expected to fall back to a full reload.
// Stored rows stay the single source of truth.
package notify

import (
	"sync"

	"github.com/safaiwalay/dispatch/internal/logger"
)

const (
	TableBookings = "bookings"
	TablePayments = "payments"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event describes one committed write against a table
type Event struct {
	Table  string `json:"table"`
	Action string `json:"action"`
	Row    any    `json:"row"`
}

type subscriber struct {
	table string
	ch    chan Event
}

type Hub struct {
	logger logger.Logger

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func NewHub(l logger.Logger) *Hub {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Hub{
		logger: l,
		subs:   make(map[*subscriber]struct{}),
	}
}

// Subscribe returns a channel of events for one table and a cancel func.
// The channel is closed on cancel. The buffer absorbs short bursts; a
// subscriber that falls further behind loses events rather than blocking
// publishers.
func (h *Hub) Subscribe(table string) (<-chan Event, func()) {
	sub := &subscriber{
		table: table,
		ch:    make(chan Event, 16),
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if _, ok := h.subs[sub]; ok {
			delete(h.subs, sub)
			close(sub.ch)
		}
	}

	return sub.ch, cancel
}

// Publish fans the event out to matching subscribers without blocking
func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		if sub.table != e.Table {
			continue
		}

		select {
		case sub.ch <- e:
		default:
			h.logger.Warn("notify subscriber too slow, dropping event", "table", e.Table, "action", e.Action)
		}
	}
}
