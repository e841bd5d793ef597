package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safaiwalay/dispatch/internal/handlers/userctx"
	"github.com/safaiwalay/dispatch/internal/models"
)

type fakeAuth struct {
	user models.User
	err  error
}

func (f fakeAuth) Auth(ctx context.Context, r *http.Request) (models.User, error) {
	return f.user, f.err
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		require.True(t, ok, "user should be in context")
		assert.Equal(t, "asha@test.in", user.Email)
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("authenticated request passes", func(t *testing.T) {
		mw := AuthMiddleware(fakeAuth{user: models.User{Email: "asha@test.in"}})
		rec := httptest.NewRecorder()

		mw(next).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("unauthenticated request rejected", func(t *testing.T) {
		mw := AuthMiddleware(fakeAuth{err: errors.New("no token")})
		rec := httptest.NewRecorder()

		mw(next).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	withUser := func(r *http.Request, role string) *http.Request {
		ctx := userctx.New(r.Context(), models.User{Role: role})
		return r.WithContext(ctx)
	}

	t.Run("matching role passes", func(t *testing.T) {
		mw := RequireRole(models.RoleCleaner)
		rec := httptest.NewRecorder()

		mw(next).ServeHTTP(rec, withUser(httptest.NewRequest("GET", "/", nil), models.RoleCleaner))

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("wrong role forbidden", func(t *testing.T) {
		mw := RequireRole(models.RoleAdmin)
		rec := httptest.NewRecorder()

		mw(next).ServeHTTP(rec, withUser(httptest.NewRequest("GET", "/", nil), models.RoleUser))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no user unauthorized", func(t *testing.T) {
		mw := RequireRole(models.RoleAdmin)
		rec := httptest.NewRecorder()

		mw(next).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
