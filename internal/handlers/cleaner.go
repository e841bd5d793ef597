package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/safaiwalay/dispatch/internal/apperrors"
	"github.com/safaiwalay/dispatch/internal/handlers/render"
	"github.com/safaiwalay/dispatch/internal/logger"
	"github.com/safaiwalay/dispatch/internal/models"
)

// transitionFunc is one booking state transition bound to a cleaner
type transitionFunc func(ctx context.Context, cleaner *models.Cleaner, bookingID uuid.UUID) (models.Booking, error)

// handleTransition serves claim, start, pause, resume and complete.
// All five share the same contract: uuid path id in, booking out, domain
// errors mapped to conflict-style statuses.
func handleTransition(profiles profileService, transition transitionFunc, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleaner, ok := cleanerFromRequest(w, r, profiles)
		if !ok {
			return
		}

		bookingID, ok := pathID(w, r)
		if !ok {
			return
		}

		updated, err := transition(r.Context(), &cleaner, bookingID)
		switch {
		case err == nil:
			render.JSON(w, newBookingResponse(updated))
		case errors.Is(err, apperrors.ErrBookingNotFound):
			render.ServiceError(w, "Booking not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrBookingAlreadyClaimed):
			render.ServiceError(w, "Booking already claimed", http.StatusConflict)
		case errors.Is(err, apperrors.ErrInvalidTransition):
			render.ServiceError(w, "Invalid state transition", http.StatusConflict)
		default:
			l.Error("Failed to transition booking", "bookingID", bookingID, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleCurrentOrders(profiles profileService, bookingService bookingService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleaner, ok := cleanerFromRequest(w, r, profiles)
		if !ok {
			return
		}

		orders, err := bookingService.CurrentOrders(r.Context(), &cleaner)
		if err != nil {
			l.Error("Failed to list current orders", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, newBookingListResponse(orders))
	})
}

func handleHistory(profiles profileService, bookingService bookingService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleaner, ok := cleanerFromRequest(w, r, profiles)
		if !ok {
			return
		}

		history, err := bookingService.History(r.Context(), &cleaner)
		if err != nil {
			l.Error("Failed to list history", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, newBookingListResponse(history))
	})
}

func handleEarningsSummary(profiles profileService, earningsService earningsService, l logger.Logger) http.Handler {
	type response struct {
		Today          float64 `json:"today"`
		Week           float64 `json:"week"`
		Month          float64 `json:"month"`
		PendingCashout float64 `json:"pending_cashout"`
		CompletedJobs  int     `json:"completed_jobs"`
		TotalHours     float64 `json:"total_hours"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleaner, ok := cleanerFromRequest(w, r, profiles)
		if !ok {
			return
		}

		summary, err := earningsService.Summary(r.Context(), &cleaner)
		if err != nil {
			l.Error("Failed to build earnings summary", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		today, _ := summary.Today.Float64()
		week, _ := summary.Week.Float64()
		month, _ := summary.Month.Float64()
		pending, _ := summary.PendingCashout.Float64()
		render.JSON(w, response{
			Today:          today,
			Week:           week,
			Month:          month,
			PendingCashout: pending,
			CompletedJobs:  summary.CompletedJobs,
			TotalHours:     summary.TotalHours,
		})
	})
}

func handleLedger(profiles profileService, earningsService earningsService, l logger.Logger) http.Handler {
	type entry struct {
		ID        uuid.UUID        `json:"id"`
		BookingID uuid.UUID        `json:"booking_id"`
		Amount    *decimal.Decimal `json:"amount"`
		Service   string           `json:"service"`
		EarnedAt  *time.Time       `json:"earned_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleaner, ok := cleanerFromRequest(w, r, profiles)
		if !ok {
			return
		}

		entries, err := earningsService.Ledger(r.Context(), &cleaner)
		if err != nil {
			l.Error("Failed to list ledger entries", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		out := make([]entry, 0, len(entries))
		for _, e := range entries {
			out = append(out, entry{
				ID:        e.ID,
				BookingID: e.BookingID,
				Amount:    e.Amount,
				Service:   e.Service,
				EarnedAt:  e.EarnedAt,
			})
		}
		render.JSON(w, out)
	})
}

func handleWithdraw(profiles profileService, earningsService earningsService, l logger.Logger) http.Handler {
	type request struct {
		Sum decimal.Decimal `json:"sum"`
	}
	type response struct {
		ID        uuid.UUID `json:"id"`
		Sum       float64   `json:"sum"`
		CreatedAt time.Time `json:"created_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleaner, ok := cleanerFromRequest(w, r, profiles)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		if !data.Sum.IsPositive() {
			render.ServiceError(w, "Withdrawal sum must be positive", http.StatusUnprocessableEntity)
			return
		}

		withdrawal, err := earningsService.Withdraw(r.Context(), &cleaner, data.Sum)
		switch {
		case err == nil:
			sum, _ := withdrawal.Amount.Float64()
			render.JSON(w, response{ID: withdrawal.ID, Sum: sum, CreatedAt: withdrawal.CreatedAt})
		case errors.Is(err, apperrors.ErrBalanceInsufficient):
			render.ServiceError(w, "Insufficient balance", http.StatusPaymentRequired)
		default:
			l.Error("Failed to withdraw", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListWithdrawals(profiles profileService, earningsService earningsService, l logger.Logger) http.Handler {
	type withdrawal struct {
		ID        uuid.UUID `json:"id"`
		Sum       float64   `json:"sum"`
		CreatedAt time.Time `json:"created_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleaner, ok := cleanerFromRequest(w, r, profiles)
		if !ok {
			return
		}

		withdrawals, err := earningsService.Withdrawals(r.Context(), &cleaner)
		if err != nil {
			l.Error("Failed to list withdrawals", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		out := make([]withdrawal, 0, len(withdrawals))
		for _, item := range withdrawals {
			sum, _ := item.Amount.Float64()
			out = append(out, withdrawal{ID: item.ID, Sum: sum, CreatedAt: item.CreatedAt})
		}
		render.JSON(w, out)
	})
}
