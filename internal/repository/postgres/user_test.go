package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safaiwalay/dispatch/internal/apperrors"
	"github.com/safaiwalay/dispatch/internal/models"
	"github.com/safaiwalay/dispatch/internal/repository"
	"github.com/safaiwalay/dispatch/internal/testutil"
)

func Test_UserRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("create user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			user, err := r.CreateUser(t.Context(), repository.CreateUserParams{
				Email:          "asha@test.in",
				Name:           "Asha",
				Phone:          "+911234567890",
				Address:        "12 Test Lane",
				HashedPassword: "hashedpassword123",
				Role:           models.RoleUser,
			})

			require.NoError(t, err)
			assert.Equal(t, "asha@test.in", user.Email)
			assert.Equal(t, "Asha", user.Name)
			assert.Equal(t, models.RoleUser, user.Role)
			assert.False(t, user.IsDeleted)
			assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Second, "CreatedAt should be recent")
		})
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			createTestUser(t, tx, "dup@test.in", models.RoleUser)

			_, err := r.CreateUser(t.Context(), repository.CreateUserParams{
				Email:          "dup@test.in",
				HashedPassword: "hashedpassword123",
				Role:           models.RoleUser,
			})

			assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("get by id and email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created := createTestUser(t, tx, "find@test.in", models.RoleUser)

			byID, err := r.GetUserByID(t.Context(), created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.Email, byID.Email)

			byEmail, err := r.GetUserByEmail(t.Context(), created.Email)
			require.NoError(t, err)
			assert.Equal(t, created.ID, byEmail.ID)
		})
	})

	t.Run("get user not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}

			_, err := r.GetUserByID(t.Context(), uuid.New())
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

			_, err = r.GetUserByEmail(t.Context(), "nobody@test.in")
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("update user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created := createTestUser(t, tx, "update@test.in", models.RoleUser)

			updated, err := r.UpdateUser(t.Context(), created.ID, repository.UpdateUserParams{
				Name:    "Updated Name",
				Email:   "updated@test.in",
				Phone:   "+919999999999",
				Address: "34 New Street",
				Role:    models.RoleCleaner,
			})

			require.NoError(t, err)
			assert.Equal(t, "Updated Name", updated.Name)
			assert.Equal(t, "updated@test.in", updated.Email)
			assert.Equal(t, models.RoleCleaner, updated.Role)
		})
	})

	t.Run("update to taken email rejected", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			createTestUser(t, tx, "taken@test.in", models.RoleUser)
			victim := createTestUser(t, tx, "victim@test.in", models.RoleUser)

			_, err := r.UpdateUser(t.Context(), victim.ID, repository.UpdateUserParams{
				Name:    victim.Name,
				Email:   "taken@test.in",
				Phone:   victim.Phone,
				Address: victim.Address,
				Role:    victim.Role,
			})

			assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("soft delete and restore", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			created := createTestUser(t, tx, "softdel@test.in", models.RoleUser)

			require.NoError(t, r.SoftDeleteUser(t.Context(), created.ID, now))

			// Row stays readable, flagged deleted; login filtering happens above
			got, err := r.GetUserByID(t.Context(), created.ID)
			require.NoError(t, err)
			assert.True(t, got.IsDeleted)
			require.NotNil(t, got.DeletedAt)
			assert.Equal(t, now, got.DeletedAt.UTC())

			// Second delete hits no rows
			err = r.SoftDeleteUser(t.Context(), created.ID, now)
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

			require.NoError(t, r.RestoreUser(t.Context(), created.ID))

			got, err = r.GetUserByID(t.Context(), created.ID)
			require.NoError(t, err)
			assert.False(t, got.IsDeleted)
			assert.Nil(t, got.DeletedAt)
		})
	})

	t.Run("list users split by deleted flag", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := UserRepo{DB: tx}
			active := createTestUser(t, tx, "active@test.in", models.RoleUser)
			gone := createTestUser(t, tx, "gone@test.in", models.RoleUser)
			require.NoError(t, r.SoftDeleteUser(t.Context(), gone.ID, now))

			activeUsers, err := r.ListUsers(t.Context(), false)
			require.NoError(t, err)
			deletedUsers, err := r.ListUsers(t.Context(), true)
			require.NoError(t, err)

			activeIDs := make([]uuid.UUID, 0, len(activeUsers))
			for _, u := range activeUsers {
				activeIDs = append(activeIDs, u.ID)
			}
			deletedIDs := make([]uuid.UUID, 0, len(deletedUsers))
			for _, u := range deletedUsers {
				deletedIDs = append(deletedIDs, u.ID)
			}

			assert.Contains(t, activeIDs, active.ID)
			assert.NotContains(t, activeIDs, gone.ID)
			assert.Contains(t, deletedIDs, gone.ID)
			assert.NotContains(t, deletedIDs, active.ID)
		})
	})
}
