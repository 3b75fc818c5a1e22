package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"notes-app/database"
	"notes-app/models"

	"github.com/umakantv/go-utils/httpserver"
	"go.uber.org/zap"
)

const loginRequiredMessage = "Please log in to access this page."

// UserHandlerFunc is a handler that runs only for a logged-in user.
// The resolved identity is passed explicitly.
type UserHandlerFunc func(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User)

// requireUser redirects anonymous callers to /login instead of running next
func (h *NotesHandler) requireUser(next UserHandlerFunc) httpserver.HandlerFunc {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		userID, ok := h.sessions.UserID(r)
		if !ok {
			logRequest(ctx, "info", "No session - redirecting to login")
			h.flashRedirect(ctx, w, r, "info", loginRequiredMessage, "/login")
			return
		}

		user, err := h.loadIdentity(ctx, userID)
		if errors.Is(err, database.ErrNotFound) {
			// session outlived its user
			logRequest(ctx, "info", "Session user missing - clearing session", zap.Int("user_id", userID))
			if err := h.sessions.End(w, r); err != nil {
				logRequest(ctx, "error", "Failed to drop session", zap.Error(err))
			}
			h.flashRedirect(ctx, w, r, "info", loginRequiredMessage, "/login")
			return
		}
		if err != nil {
			h.serverError(ctx, w, r, nil, "Failed to load session user", err)
			return
		}

		ctx = withSessionAuth(ctx, user)
		next(ctx, w, r.WithContext(ctx), user)
	}
}

// withSessionAuth records the logged-in user where httpserver keeps request auth,
// so logRequest and GetRequestAuth see it on every page behind requireUser
func withSessionAuth(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, httpserver.RequestAuthKey, httpserver.RequestAuth{
		Type:   "session",
		Client: "user:" + strconv.Itoa(user.ID),
	})
}

// loadIdentity fetches the user bound to a session
func (h *NotesHandler) loadIdentity(ctx context.Context, userID int) (*models.User, error) {
	return h.store.GetUserByID(ctx, userID)
}

// currentUser is the optional identity for pages open to everyone
func (h *NotesHandler) currentUser(ctx context.Context, r *http.Request) *models.User {
	userID, ok := h.sessions.UserID(r)
	if !ok {
		return nil
	}
	user, err := h.loadIdentity(ctx, userID)
	if err != nil {
		return nil
	}
	return user
}
