package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safaiwalay/dispatch/internal/apperrors"
	"github.com/safaiwalay/dispatch/internal/models"
	"github.com/safaiwalay/dispatch/internal/repository"
	"github.com/safaiwalay/dispatch/internal/repository/postgres"
	"github.com/safaiwalay/dispatch/internal/service/auth/tokenmanager"
	"github.com/safaiwalay/dispatch/internal/testutil"
)

func newAuthService(t *testing.T, tx pgx.Tx) (*AuthService, repository.Storage) {
	t.Helper()

	storage := postgres.NewStorage(tx)
	tm, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret-key"}, storage.Refresh())
	require.NoError(t, err)

	service, err := NewService(Config{}, tm, storage)
	require.NoError(t, err)
	return service, storage
}

var registerParams = RegisterParams{
	Email:    "asha@test.in",
	Password: "password12345",
	Name:     "Asha",
	Phone:    "+911234567890",
	Address:  "12 Test Lane",
}

func Test_AuthService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("register creates customer and returns pair", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service, storage := newAuthService(t, tx)

			pair, err := service.Register(t.Context(), registerParams)

			require.NoError(t, err)
			assert.NotEmpty(t, pair.Access.Value)
			assert.NotEmpty(t, pair.Refresh.Value)

			user, err := storage.User().GetUserByEmail(t.Context(), "asha@test.in")
			require.NoError(t, err)
			assert.Equal(t, models.RoleUser, user.Role, "registration never grants another role")
			assert.NotEqual(t, "password12345", user.HashedPassword, "password must be hashed")
		})
	})

	t.Run("register duplicate email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service, _ := newAuthService(t, tx)

			_, err := service.Register(t.Context(), registerParams)
			require.NoError(t, err)

			_, err = service.Register(t.Context(), registerParams)

			assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("login ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service, _ := newAuthService(t, tx)
			_, err := service.Register(t.Context(), registerParams)
			require.NoError(t, err)

			pair, err := service.Login(t.Context(), "asha@test.in", "password12345")

			require.NoError(t, err)
			assert.NotEmpty(t, pair.Access.Value)
		})
	})

	t.Run("login wrong password", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service, _ := newAuthService(t, tx)
			_, err := service.Register(t.Context(), registerParams)
			require.NoError(t, err)

			_, err = service.Login(t.Context(), "asha@test.in", "not-the-password")

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("login deleted account", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service, storage := newAuthService(t, tx)
			_, err := service.Register(t.Context(), registerParams)
			require.NoError(t, err)

			user, err := storage.User().GetUserByEmail(t.Context(), "asha@test.in")
			require.NoError(t, err)
			require.NoError(t, storage.User().SoftDeleteUser(t.Context(), user.ID, time.Now()))

			_, err = service.Login(t.Context(), "asha@test.in", "password12345")

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("refresh is one shot", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service, _ := newAuthService(t, tx)
			pair, err := service.Register(t.Context(), registerParams)
			require.NoError(t, err)

			fresh, err := service.RefreshPair(t.Context(), pair.Refresh.Value)
			require.NoError(t, err)
			assert.NotEqual(t, pair.Refresh.Value, fresh.Refresh.Value)

			_, err = service.RefreshPair(t.Context(), pair.Refresh.Value)
			assert.ErrorIs(t, err, apperrors.ErrRefreshTokenIsUsed)
		})
	})

	t.Run("auth request round trip", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service, _ := newAuthService(t, tx)
			pair, err := service.Register(t.Context(), registerParams)
			require.NoError(t, err)

			r := httptest.NewRequest("GET", "/", nil)
			service.SetTokenPairToRequest(r, pair)

			user, err := service.Auth(t.Context(), r)

			require.NoError(t, err)
			assert.Equal(t, "asha@test.in", user.Email)

			refresh, err := service.GetRefreshString(r)
			require.NoError(t, err)
			assert.Equal(t, pair.Refresh.Value, refresh)
		})
	})

	t.Run("auth without token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			service, _ := newAuthService(t, tx)

			_, err := service.Auth(t.Context(), httptest.NewRequest("GET", "/", nil))

			assert.Error(t, err)
		})
	})
}
