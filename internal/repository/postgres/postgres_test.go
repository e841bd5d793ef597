package postgres

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/safaiwalay/dispatch/internal/models"
	"github.com/safaiwalay/dispatch/internal/repository"
)

// Shared fixtures for repository tests. Every helper works against the
// given tx so the test transaction rollback wipes everything.

func createTestUser(t *testing.T, db DBTX, email string, role string) models.User {
	t.Helper()

	r := UserRepo{DB: db}
	user, err := r.CreateUser(t.Context(), repository.CreateUserParams{
		Email:          email,
		Name:           "Test User",
		Phone:          "+911234567890",
		Address:        "12 Test Lane",
		HashedPassword: "hashedpassword123",
		Role:           role,
	})
	require.NoError(t, err)
	return user
}

func createTestCleaner(t *testing.T, db DBTX, email string) models.Cleaner {
	t.Helper()

	user := createTestUser(t, db, email, models.RoleCleaner)

	r := CleanerRepo{DB: db}
	cleaner, err := r.CreateCleaner(t.Context(), user.ID)
	require.NoError(t, err)
	return cleaner
}

func createTestService(t *testing.T, db DBTX, name string, price string) models.Service {
	t.Helper()

	r := ServiceRepo{DB: db}
	service, err := r.CreateService(t.Context(), repository.CreateServiceParams{
		Name:        name,
		Description: "test service",
		Price:       decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return service
}

func createTestBooking(t *testing.T, db DBTX, serviceName string) models.Booking {
	t.Helper()

	user := createTestUser(t, db, "customer-"+serviceName+"@test.in", models.RoleUser)
	service := createTestService(t, db, serviceName, "999")

	r := BookingRepo{DB: db}
	booking, err := r.CreateBooking(t.Context(), repository.CreateBookingParams{
		UserID:      user.ID,
		ServiceID:   service.ID,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Address:     "12 Test Lane",
		Amount:      service.Price,
	})
	require.NoError(t, err)
	return booking
}
