package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/safaiwalay/dispatch/internal/apperrors"
	"github.com/safaiwalay/dispatch/internal/handlers/render"
	"github.com/safaiwalay/dispatch/internal/handlers/userctx"
	"github.com/safaiwalay/dispatch/internal/models"
)

// userFromContext extracts the authenticated user set by the auth
// middleware. A miss means the route is wired without the middleware,
// which is a server bug, not a client error.
func userFromContext(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
	}
	return user, ok
}

// cleanerFromRequest resolves the cleaner profile of the authenticated user
func cleanerFromRequest(w http.ResponseWriter, r *http.Request, profiles profileService) (models.Cleaner, bool) {
	user, ok := userFromContext(w, r)
	if !ok {
		return models.Cleaner{}, false
	}

	cleaner, err := profiles.GetCleaner(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCleanerNotFound) {
			render.ServiceError(w, "Cleaner profile required", http.StatusForbidden)
		} else {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return models.Cleaner{}, false
	}

	return cleaner, true
}

// pathID parses the '{id}' path value as uuid
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
