package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"notes-app/auth"
	"notes-app/database"
	"notes-app/models"
	"notes-app/sessions"
	"notes-app/views"

	"github.com/gorilla/mux"
	"github.com/umakantv/go-utils/httpserver"
	logger "github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// NotesHandler serves every page of the app
type NotesHandler struct {
	store    *database.Store
	sessions *sessions.Manager
	hasher   *auth.Hasher
	views    *views.Renderer
}

// NewNotesHandler creates the handler
func NewNotesHandler(store *database.Store, sessionManager *sessions.Manager, hasher *auth.Hasher, renderer *views.Renderer) *NotesHandler {
	return &NotesHandler{
		store:    store,
		sessions: sessionManager,
		hasher:   hasher,
		views:    renderer,
	}
}

// logRequest logs with route, method and path taken from the httpserver context,
// plus the session client once requireUser has resolved one
func logRequest(ctx context.Context, level string, message string, fields ...zap.Field) {
	requestAuth := httpserver.GetRequestAuth(ctx)
	routeName := httpserver.GetRouteName(ctx)
	method := httpserver.GetRouteMethod(ctx)
	path := httpserver.GetRoutePath(ctx)

	logMsg := time.Now().Format("2006-01-02 15:04:05") + " - " + routeName + " - " + method + " - " + path
	if requestAuth != nil {
		logMsg += " - client:" + requestAuth.Client
	}
	if message != "" {
		logMsg += " - " + message
	}

	allFields := append([]zap.Field{
		zap.String("route", routeName),
		zap.String("method", method),
		zap.String("path", path),
	}, fields...)

	switch level {
	case "info":
		logger.Info(logMsg, allFields...)
	case "error":
		logger.Error(logMsg, allFields...)
	case "debug":
		logger.Debug(logMsg, allFields...)
	}
}

// render pops pending flashes into the page and writes it
func (h *NotesHandler) render(ctx context.Context, w http.ResponseWriter, r *http.Request, status int, name, title string, user *models.User, data interface{}) {
	flashes, err := h.sessions.Flashes(r)
	if err != nil {
		logRequest(ctx, "error", "Failed to clear flashes", zap.Error(err))
	}
	page := views.Page{
		Title:   title,
		User:    user,
		Flashes: flashes,
		Data:    data,
	}
	if err := h.views.Render(w, status, name, page); err != nil {
		logRequest(ctx, "error", "Render failed", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// serverError logs err and shows a generic page; backend details never reach the user
func (h *NotesHandler) serverError(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User, message string, err error) {
	logRequest(ctx, "error", message, zap.Error(err))
	h.render(ctx, w, r, http.StatusInternalServerError, views.Error, "Error", user, nil)
}

func (h *NotesHandler) notFound(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User, message string) {
	logRequest(ctx, "info", message)
	h.render(ctx, w, r, http.StatusNotFound, views.NotFound, "Not found", user, message)
}

// flashRedirect queues a flash and answers 302
func (h *NotesHandler) flashRedirect(ctx context.Context, w http.ResponseWriter, r *http.Request, category, message, target string) {
	if err := h.sessions.Flash(w, r, category, message); err != nil {
		logRequest(ctx, "error", "Failed to store flash", zap.Error(err))
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// pathID parses the {id} route variable
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
