package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/safaiwalay/dispatch/internal/apperrors"
	"github.com/safaiwalay/dispatch/internal/handlers/render"
	"github.com/safaiwalay/dispatch/internal/logger"
	"github.com/safaiwalay/dispatch/internal/models"
	"github.com/safaiwalay/dispatch/internal/service/booking"
)

// bookingResponse is the wire shape shared by customer, cleaner and
// admin booking endpoints
type bookingResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Status             string          `json:"status"`
	ServiceID          uuid.UUID       `json:"service_id"`
	CleanerID          *uuid.UUID      `json:"cleaner_id,omitempty"`
	ScheduledAt        time.Time       `json:"scheduled_at"`
	Address            string          `json:"address"`
	Amount             decimal.Decimal `json:"amount"`
	PickedAt           *time.Time      `json:"picked_at,omitempty"`
	StartedAt          *time.Time      `json:"started_at,omitempty"`
	PausedAt           *time.Time      `json:"paused_at,omitempty"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
	PaymentCollectedAt *time.Time      `json:"payment_collected_at,omitempty"`
	PauseMinutes       int64           `json:"pause_minutes"`
	WorkedMinutes      int64           `json:"worked_minutes"`
	CreatedAt          time.Time       `json:"created_at"`
}

func newBookingResponse(b models.Booking) bookingResponse {
	worked := booking.WorkingDuration(b, time.Now().UTC())

	return bookingResponse{
		ID:                 b.ID,
		Status:             b.Status,
		ServiceID:          b.ServiceID,
		CleanerID:          b.CleanerID,
		ScheduledAt:        b.ScheduledAt,
		Address:            b.Address,
		Amount:             b.Amount,
		PickedAt:           b.PickedAt,
		StartedAt:          b.StartedAt,
		PausedAt:           b.PausedAt,
		CompletedAt:        b.CompletedAt,
		PaymentCollectedAt: b.PaymentCollectedAt,
		PauseMinutes:       b.PauseMinutes,
		WorkedMinutes:      int64(worked / time.Minute),
		CreatedAt:          b.CreatedAt,
	}
}

func newBookingListResponse(bookings []models.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, newBookingResponse(b))
	}
	return out
}

func handleCreateBooking(bookingService bookingService, l logger.Logger) http.Handler {
	type request struct {
		Service     string    `json:"service" validate:"required"`
		ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
		Address     string    `json:"address" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFromContext(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		created, err := bookingService.Create(r.Context(), &user, booking.CreateParams{
			ServiceName: data.Service,
			ScheduledAt: data.ScheduledAt,
			Address:     data.Address,
		})
		switch {
		case err == nil:
			render.JSON(w, newBookingResponse(created))
		case errors.Is(err, apperrors.ErrServiceNotFound):
			render.ServiceError(w, "Unknown service", http.StatusUnprocessableEntity)
		default:
			l.Error("Failed to create booking", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListMyBookings(bookingService bookingService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFromContext(w, r)
		if !ok {
			return
		}

		bookings, err := bookingService.ListForUser(r.Context(), &user)
		if err != nil {
			l.Error("Failed to list bookings", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, newBookingListResponse(bookings))
	})
}

func handleListServices(catalogService catalogService, l logger.Logger) http.Handler {
	type service struct {
		ID          uuid.UUID       `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		services, err := catalogService.ListServices(r.Context())
		if err != nil {
			l.Error("Failed to list services", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		out := make([]service, 0, len(services))
		for _, s := range services {
			out = append(out, service{
				ID:          s.ID,
				Name:        s.Name,
				Description: s.Description,
				Price:       s.Price,
			})
		}
		render.JSON(w, out)
	})
}
