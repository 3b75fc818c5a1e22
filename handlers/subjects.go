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

// Dashboard handles GET /dashboard - every subject of the user with its notes
func (h *NotesHandler) Dashboard(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User) {
	subjects, err := h.store.ListSubjects(ctx, user.ID)
	if err != nil {
		h.serverError(ctx, w, r, user, "Failed to list subjects", err)
		return
	}

	rows := make([]models.SubjectWithNotes, 0, len(subjects))
	for _, subject := range subjects {
		notes, err := h.store.ListNotes(ctx, subject.ID)
		if err != nil {
			h.serverError(ctx, w, r, user, "Failed to list notes", err)
			return
		}
		rows = append(rows, models.SubjectWithNotes{Subject: subject, Notes: notes})
	}

	logRequest(ctx, "debug", "Dashboard loaded", zap.Int("user_id", user.ID), zap.Int("subjects", len(rows)))
	h.render(ctx, w, r, http.StatusOK, views.Dashboard, "Dashboard", user, views.DashboardData{Subjects: rows})
}

// AddSubject handles POST /add_subject
func (h *NotesHandler) AddSubject(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User) {
	name := strings.TrimSpace(r.FormValue("subject_name"))
	if name == "" {
		h.flashRedirect(ctx, w, r, "danger", "Subject name is required!", "/dashboard")
		return
	}

	subject, err := h.store.InsertSubject(ctx, user.ID, name)
	if err != nil {
		h.serverError(ctx, w, r, user, "Failed to create subject", err)
		return
	}

	logRequest(ctx, "info", "Subject created", zap.Int("user_id", user.ID), zap.Int("subject_id", subject.ID))
	h.flashRedirect(ctx, w, r, "success", "Subject added!", "/dashboard")
}

// EditSubjectForm handles GET /edit_subject/{id}
func (h *NotesHandler) EditSubjectForm(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(ctx, w, r, user, "Subject not found")
		return
	}

	subject, err := h.store.GetSubject(ctx, id, user.ID)
	if errors.Is(err, database.ErrNotFound) {
		h.notFound(ctx, w, r, user, "Subject not found")
		return
	}
	if err != nil {
		h.serverError(ctx, w, r, user, "Failed to load subject", err)
		return
	}

	h.render(ctx, w, r, http.StatusOK, views.EditSubject, "Edit subject", user, subject)
}

// EditSubject handles POST /edit_subject/{id} - rename
func (h *NotesHandler) EditSubject(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(ctx, w, r, user, "Subject not found")
		return
	}

	name := strings.TrimSpace(r.FormValue("subject_name"))
	if name == "" {
		h.flashRedirect(ctx, w, r, "danger", "Subject name is required!", "/edit_subject/"+strconv.Itoa(id))
		return
	}

	err := h.store.UpdateSubjectName(ctx, id, user.ID, name)
	if errors.Is(err, database.ErrNotFound) {
		logRequest(ctx, "info", "Subject not owned or missing", zap.Int("user_id", user.ID), zap.Int("subject_id", id))
		h.flashRedirect(ctx, w, r, "danger", "Subject not found!", "/dashboard")
		return
	}
	if err != nil {
		h.serverError(ctx, w, r, user, "Failed to update subject", err)
		return
	}

	logRequest(ctx, "info", "Subject updated", zap.Int("user_id", user.ID), zap.Int("subject_id", id))
	h.flashRedirect(ctx, w, r, "success", "Subject updated!", "/dashboard")
}

// DeleteSubject handles POST /delete_subject/{id} - removes the subject and its notes
func (h *NotesHandler) DeleteSubject(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(ctx, w, r, user, "Subject not found")
		return
	}

	err := h.store.DeleteSubject(ctx, id, user.ID)
	if errors.Is(err, database.ErrNotFound) {
		logRequest(ctx, "info", "Subject not owned or missing", zap.Int("user_id", user.ID), zap.Int("subject_id", id))
		h.flashRedirect(ctx, w, r, "danger", "Subject not found!", "/dashboard")
		return
	}
	if err != nil {
		h.serverError(ctx, w, r, user, "Failed to delete subject", err)
		return
	}

	logRequest(ctx, "info", "Subject deleted", zap.Int("user_id", user.ID), zap.Int("subject_id", id))
	h.flashRedirect(ctx, w, r, "success", "Subject and its notes deleted!", "/dashboard")
}
