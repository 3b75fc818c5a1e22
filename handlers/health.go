package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

// Health handles GET /health - JSON status including database reachability
func (h *NotesHandler) Health(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := h.store.Ping(ctx); err != nil {
		logRequest(ctx, "error", "Database ping failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errs.NewInternalServerError("Database unavailable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy", "service": "notes-app"})
}
