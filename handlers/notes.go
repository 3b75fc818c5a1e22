package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"notes-app/database"
	"notes-app/models"
	"notes-app/views"

	"go.uber.org/zap"
)

// AddNote handles POST /add_note - the target subject must belong to the user
func (h *NotesHandler) AddNote(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User) {
	subjectID, err := strconv.Atoi(r.FormValue("subject_id"))
	if err != nil {
		h.flashRedirect(ctx, w, r, "danger", "Subject not found!", "/dashboard")
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	content := r.FormValue("content")
	if title == "" {
		h.flashRedirect(ctx, w, r, "danger", "Note title is required!", "/dashboard")
		return
	}

	_, err = h.store.GetSubject(ctx, subjectID, user.ID)
	if errors.Is(err, database.ErrNotFound) {
		logRequest(ctx, "info", "Subject not owned or missing", zap.Int("user_id", user.ID), zap.Int("subject_id", subjectID))
		h.flashRedirect(ctx, w, r, "danger", "Subject not found!", "/dashboard")
		return
	}
	if err != nil {
		h.serverError(ctx, w, r, user, "Failed to load subject", err)
		return
	}

	note, err := h.store.InsertNote(ctx, subjectID, title, content)
	if err != nil {
		h.serverError(ctx, w, r, user, "Failed to create note", err)
		return
	}

	logRequest(ctx, "info", "Note created", zap.Int("user_id", user.ID), zap.Int("note_id", note.ID))
	h.flashRedirect(ctx, w, r, "success", "Note added!", "/dashboard")
}

// EditNoteForm handles GET /edit_note/{id}
func (h *NotesHandler) EditNoteForm(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(ctx, w, r, user, "Note not found")
		return
	}

	note, err := h.store.GetNote(ctx, id, user.ID)
	if errors.Is(err, database.ErrNotFound) {
		h.notFound(ctx, w, r, user, "Note not found")
		return
	}
	if err != nil {
		h.serverError(ctx, w, r, user, "Failed to load note", err)
		return
	}

	h.render(ctx, w, r, http.StatusOK, views.EditNote, "Edit note", user, note)
}

// EditNote handles POST /edit_note/{id}
func (h *NotesHandler) EditNote(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(ctx, w, r, user, "Note not found")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	content := r.FormValue("content")
	if title == "" {
		h.flashRedirect(ctx, w, r, "danger", "Note title is required!", "/edit_note/"+strconv.Itoa(id))
		return
	}

	err := h.store.UpdateNote(ctx, id, user.ID, title, content)
	if errors.Is(err, database.ErrNotFound) {
		logRequest(ctx, "info", "Note not owned or missing", zap.Int("user_id", user.ID), zap.Int("note_id", id))
		h.flashRedirect(ctx, w, r, "danger", "Note not found!", "/dashboard")
		return
	}
	if err != nil {
		h.serverError(ctx, w, r, user, "Failed to update note", err)
		return
	}

	logRequest(ctx, "info", "Note updated", zap.Int("user_id", user.ID), zap.Int("note_id", id))
	h.flashRedirect(ctx, w, r, "success", "Note updated!", "/dashboard")
}

// DeleteNote handles POST /delete_note/{id}
func (h *NotesHandler) DeleteNote(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(ctx, w, r, user, "Note not found")
		return
	}

	err := h.store.DeleteNote(ctx, id, user.ID)
	if errors.Is(err, database.ErrNotFound) {
		logRequest(ctx, "info", "Note not owned or missing", zap.Int("user_id", user.ID), zap.Int("note_id", id))
		h.flashRedirect(ctx, w, r, "danger", "Note not found!", "/dashboard")
		return
	}
	if err != nil {
		h.serverError(ctx, w, r, user, "Failed to delete note", err)
		return
	}

	logRequest(ctx, "info", "Note deleted", zap.Int("user_id", user.ID), zap.Int("note_id", id))
	h.flashRedirect(ctx, w, r, "success", "Note deleted!", "/dashboard")
}
