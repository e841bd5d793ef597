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
	"github.com/safaiwalay/dispatch/internal/service/catalog"
	"github.com/safaiwalay/dispatch/internal/service/user"
)

type userResponse struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Address   string     `json:"address"`
	Role      string     `json:"role"`
	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Address:   u.Address,
		Role:      u.Role,
		IsDeleted: u.IsDeleted,
		DeletedAt: u.DeletedAt,
		CreatedAt: u.CreatedAt,
	}
}

// handleAdminDashboard aggregates the admin landing page: every booking,
// every active user and total revenue collected so far
func handleAdminDashboard(bookingService adminBookingService, userService adminUserService, l logger.Logger) http.Handler {
	type response struct {
		Bookings []bookingResponse `json:"bookings"`
		Users    []userResponse    `json:"users"`
		Revenue  float64           `json:"revenue"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bookings, err := bookingService.ListBookings(r.Context())
		if err != nil {
			l.Error("Failed to list bookings", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		users, err := userService.ListUsers(r.Context(), false)
		if err != nil {
			l.Error("Failed to list users", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		revenue := decimal.Zero
		for _, b := range bookings {
			if b.PaymentCollectedAt != nil {
				revenue = revenue.Add(b.Amount)
			}
		}
		revenueFloat, _ := revenue.Float64()

		userList := make([]userResponse, 0, len(users))
		for _, u := range users {
			userList = append(userList, newUserResponse(u))
		}

		render.JSON(w, response{
			Bookings: newBookingListResponse(bookings),
			Users:    userList,
			Revenue:  revenueFloat,
		})
	})
}

func handleAdminListUsers(userService adminUserService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deleted := r.URL.Query().Get("deleted") == "true"

		users, err := userService.ListUsers(r.Context(), deleted)
		if err != nil {
			l.Error("Failed to list users", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		out := make([]userResponse, 0, len(users))
		for _, u := range users {
			out = append(out, newUserResponse(u))
		}
		render.JSON(w, out)
	})
}

func handleAdminCreateUser(userService adminUserService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		Name     string `json:"name" validate:"required,min=2,max=100"`
		Phone    string `json:"phone" validate:"required,min=5,max=20"`
		Address  string `json:"address" validate:"required"`
		Role     string `json:"role" validate:"omitempty,oneof=user admin cleaner"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		created, err := userService.CreateUser(r.Context(), user.CreateParams{
			Email:    data.Email,
			Password: data.Password,
			Name:     data.Name,
			Phone:    data.Phone,
			Address:  data.Address,
			Role:     data.Role,
		})
		switch {
		case err == nil:
			render.JSON(w, newUserResponse(created))
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "User already exists", http.StatusConflict)
		default:
			l.Error("Failed to create user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleAdminUpdateUser(userService adminUserService, l logger.Logger) http.Handler {
	type request struct {
		Name    string `json:"name" validate:"required,min=2,max=100"`
		Email   string `json:"email" validate:"required,email"`
		Phone   string `json:"phone" validate:"required,min=5,max=20"`
		Address string `json:"address" validate:"required"`
		Role    string `json:"role" validate:"required,oneof=user admin cleaner"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		updated, err := userService.UpdateUser(r.Context(), userID, user.UpdateParams{
			Name:    data.Name,
			Email:   data.Email,
			Phone:   data.Phone,
			Address: data.Address,
			Role:    data.Role,
		})
		switch {
		case err == nil:
			render.JSON(w, newUserResponse(updated))
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "Email already taken", http.StatusConflict)
		default:
			l.Error("Failed to update user", "userID", userID, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleAdminDeleteUser(userService adminUserService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r)
		if !ok {
			return
		}

		err := userService.SoftDeleteUser(r.Context(), userID)
		switch {
		case err == nil:
			render.JSON(w, response{Message: "User deleted"})
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			l.Error("Failed to delete user", "userID", userID, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleAdminRestoreUser(userService adminUserService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r)
		if !ok {
			return
		}

		err := userService.RestoreUser(r.Context(), userID)
		switch {
		case err == nil:
			render.JSON(w, response{Message: "User restored"})
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			l.Error("Failed to restore user", "userID", userID, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleAdminDeleteBooking(bookingService adminBookingService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bookingID, ok := pathID(w, r)
		if !ok {
			return
		}

		err := bookingService.SoftDelete(r.Context(), bookingID)
		switch {
		case err == nil:
			render.JSON(w, response{Message: "Booking deleted"})
		case errors.Is(err, apperrors.ErrBookingNotFound):
			render.ServiceError(w, "Booking not found", http.StatusNotFound)
		default:
			l.Error("Failed to delete booking", "bookingID", bookingID, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleAdminRestoreBooking(bookingService adminBookingService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bookingID, ok := pathID(w, r)
		if !ok {
			return
		}

		err := bookingService.Restore(r.Context(), bookingID)
		switch {
		case err == nil:
			render.JSON(w, response{Message: "Booking restored"})
		case errors.Is(err, apperrors.ErrBookingNotFound):
			render.ServiceError(w, "Booking not found", http.StatusNotFound)
		default:
			l.Error("Failed to restore booking", "bookingID", bookingID, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleAdminCreateService(catalogService catalogService, l logger.Logger) http.Handler {
	type request struct {
		Name        string          `json:"name" validate:"required,min=2,max=100"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
	}
	type response struct {
		ID          uuid.UUID       `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		if !data.Price.IsPositive() {
			render.ServiceError(w, "Price must be positive", http.StatusUnprocessableEntity)
			return
		}

		created, err := catalogService.CreateService(r.Context(), catalog.CreateParams{
			Name:        data.Name,
			Description: data.Description,
			Price:       data.Price,
		})
		if err != nil {
			l.Error("Failed to create service", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{
			ID:          created.ID,
			Name:        created.Name,
			Description: created.Description,
			Price:       created.Price,
		})
	})
}
