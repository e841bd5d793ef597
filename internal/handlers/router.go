package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/safaiwalay/dispatch/internal/handlers/middleware"
	"github.com/safaiwalay/dispatch/internal/logger"
	"github.com/safaiwalay/dispatch/internal/models"
	"github.com/safaiwalay/dispatch/internal/notify"
	"github.com/safaiwalay/dispatch/internal/service/auth"
	"github.com/safaiwalay/dispatch/internal/service/booking"
	"github.com/safaiwalay/dispatch/internal/service/catalog"
	"github.com/safaiwalay/dispatch/internal/service/earnings"
	"github.com/safaiwalay/dispatch/internal/service/user"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type Services struct {
	Auth     authService
	Booking  bookingService
	Earnings earningsService
	Catalog  catalogService
	User     userService
	Hub      *notify.Hub
}

func NewRouter(s Services, l logger.Logger) http.Handler {
	withAuth := middleware.AuthMiddleware(s.Auth)
	asCleaner := middleware.RequireRole(models.RoleCleaner)
	asAdmin := middleware.RequireRole(models.RoleAdmin)

	mux := http.NewServeMux()

	// Public
	mux.Handle("POST /api/auth/register", handleRegister(s.Auth, l))
	mux.Handle("POST /api/auth/login", handleLogin(s.Auth, l))
	mux.Handle("POST /api/auth/refresh", handleTokenRefresh(s.Auth, l))
	mux.Handle("GET /api/services", handleListServices(s.Catalog, l))

	// Any authenticated user
	mux.Handle("GET /api/me", chain(handleUserMe(), withAuth))
	mux.Handle("POST /api/bookings", chain(handleCreateBooking(s.Booking, l), withAuth))
	mux.Handle("GET /api/bookings", chain(handleListMyBookings(s.Booking, l), withAuth))

	// Cleaner workspace
	cleanerRoutes := map[string]http.Handler{
		"GET /api/cleaner/orders":      handleCurrentOrders(s.User, s.Booking, l),
		"GET /api/cleaner/history":     handleHistory(s.User, s.Booking, l),
		"GET /api/cleaner/earnings":    handleEarningsSummary(s.User, s.Earnings, l),
		"GET /api/cleaner/ledger":      handleLedger(s.User, s.Earnings, l),
		"POST /api/cleaner/withdraw":   handleWithdraw(s.User, s.Earnings, l),
		"GET /api/cleaner/withdrawals": handleListWithdrawals(s.User, s.Earnings, l),

		"POST /api/cleaner/bookings/{id}/claim":    handleTransition(s.User, s.Booking.Claim, l),
		"POST /api/cleaner/bookings/{id}/start":    handleTransition(s.User, s.Booking.Start, l),
		"POST /api/cleaner/bookings/{id}/pause":    handleTransition(s.User, s.Booking.Pause, l),
		"POST /api/cleaner/bookings/{id}/resume":   handleTransition(s.User, s.Booking.Resume, l),
		"POST /api/cleaner/bookings/{id}/complete": handleTransition(s.User, s.Booking.Complete, l),
	}
	for pattern, h := range cleanerRoutes {
		mux.Handle(pattern, chain(h, withAuth, asCleaner))
	}

	// Admin
	adminRoutes := map[string]http.Handler{
		"GET /api/admin/dashboard": handleAdminDashboard(s.Booking, s.User, l),

		"GET /api/admin/users":               handleAdminListUsers(s.User, l),
		"POST /api/admin/users":              handleAdminCreateUser(s.User, l),
		"PUT /api/admin/users/{id}":          handleAdminUpdateUser(s.User, l),
		"DELETE /api/admin/users/{id}":       handleAdminDeleteUser(s.User, l),
		"POST /api/admin/users/{id}/restore": handleAdminRestoreUser(s.User, l),

		"DELETE /api/admin/bookings/{id}":       handleAdminDeleteBooking(s.Booking, l),
		"POST /api/admin/bookings/{id}/restore": handleAdminRestoreBooking(s.Booking, l),

		"POST /api/admin/services": handleAdminCreateService(s.Catalog, l),
	}
	for pattern, h := range adminRoutes {
		mux.Handle(pattern, chain(h, withAuth, asAdmin))
	}

	// Live dashboards
	mux.Handle("GET /ws/bookings", chain(handleStream(s.Hub, notify.TableBookings, l), withAuth))
	mux.Handle("GET /ws/payments", chain(handleStream(s.Hub, notify.TablePayments, l), withAuth))

	return chain(mux,
		middleware.LoggerMiddleware(l),
	)
}

type authService interface {
	// Register customer account with profile data
	// Has to return apperrors.ErrUserAlreadyExists if the email is taken
	Register(ctx context.Context, p auth.RegisterParams) (models.TokenPair, error)

	// Login with email and password
	// Has to return apperrors.ErrUserNotFound on any credential failure
	Login(ctx context.Context, email string, password string) (models.TokenPair, error)

	// Refresh tokens using the one-shot refresh token
	RefreshPair(ctx context.Context, refresh string) (models.TokenPair, error)

	// Set auth tokens (access, refresh) to response
	SetTokenPairToResponse(w http.ResponseWriter, pair models.TokenPair)

	// Get refresh token from request
	GetRefreshString(r *http.Request) (string, error)

	// Authenticate request and return the user
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}

type bookingService interface {
	Create(ctx context.Context, u *models.User, p booking.CreateParams) (models.Booking, error)
	ListForUser(ctx context.Context, u *models.User) ([]models.Booking, error)

	Claim(ctx context.Context, c *models.Cleaner, bookingID uuid.UUID) (models.Booking, error)
	Start(ctx context.Context, c *models.Cleaner, bookingID uuid.UUID) (models.Booking, error)
	Pause(ctx context.Context, c *models.Cleaner, bookingID uuid.UUID) (models.Booking, error)
	Resume(ctx context.Context, c *models.Cleaner, bookingID uuid.UUID) (models.Booking, error)
	Complete(ctx context.Context, c *models.Cleaner, bookingID uuid.UUID) (models.Booking, error)

	CurrentOrders(ctx context.Context, c *models.Cleaner) ([]models.Booking, error)
	History(ctx context.Context, c *models.Cleaner) ([]models.Booking, error)

	adminBookingService
}

type adminBookingService interface {
	ListBookings(ctx context.Context) ([]models.Booking, error)
	SoftDelete(ctx context.Context, bookingID uuid.UUID) error
	Restore(ctx context.Context, bookingID uuid.UUID) error
}

type earningsService interface {
	Summary(ctx context.Context, c *models.Cleaner) (earnings.Summary, error)
	Ledger(ctx context.Context, c *models.Cleaner) ([]models.EarningsEntry, error)
	Withdraw(ctx context.Context, c *models.Cleaner, amount decimal.Decimal) (models.Withdrawal, error)
	Withdrawals(ctx context.Context, c *models.Cleaner) ([]models.Withdrawal, error)
}

type catalogService interface {
	CreateService(ctx context.Context, p catalog.CreateParams) (models.Service, error)
	ListServices(ctx context.Context) ([]models.Service, error)
}

type profileService interface {
	// Resolve cleaner profile for user
	// Has to return apperrors.ErrCleanerNotFound if the user has no profile
	GetCleaner(ctx context.Context, userID uuid.UUID) (models.Cleaner, error)
}

type userService interface {
	profileService
	adminUserService
}

type adminUserService interface {
	CreateUser(ctx context.Context, p user.CreateParams) (models.User, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, p user.UpdateParams) (models.User, error)
	SoftDeleteUser(ctx context.Context, userID uuid.UUID) error
	RestoreUser(ctx context.Context, userID uuid.UUID) error
	ListUsers(ctx context.Context, deleted bool) ([]models.User, error)
}
