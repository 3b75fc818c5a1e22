package handlers

import (
	"net/http"

	"github.com/umakantv/go-utils/httpserver"
)

// Route is one method+path binding
type Route struct {
	Name    string
	Method  string
	Path    string
	Handler httpserver.HandlerFunc
}

// Routes lists every endpoint; pages behind requireUser redirect anonymous callers to /login
func (h *NotesHandler) Routes() []Route {
	return []Route{
		{Name: "HealthCheck", Method: http.MethodGet, Path: "/health", Handler: h.Health},
		{Name: "Home", Method: http.MethodGet, Path: "/", Handler: h.Home},

		{Name: "RegisterForm", Method: http.MethodGet, Path: "/register", Handler: h.RegisterForm},
		{Name: "Register", Method: http.MethodPost, Path: "/register", Handler: h.Register},
		{Name: "LoginForm", Method: http.MethodGet, Path: "/login", Handler: h.LoginForm},
		{Name: "Login", Method: http.MethodPost, Path: "/login", Handler: h.Login},
		{Name: "Logout", Method: http.MethodGet, Path: "/logout", Handler: h.requireUser(h.Logout)},

		{Name: "Dashboard", Method: http.MethodGet, Path: "/dashboard", Handler: h.requireUser(h.Dashboard)},

		{Name: "AddSubject", Method: http.MethodPost, Path: "/add_subject", Handler: h.requireUser(h.AddSubject)},
		{Name: "EditSubjectForm", Method: http.MethodGet, Path: "/edit_subject/{id}", Handler: h.requireUser(h.EditSubjectForm)},
		{Name: "EditSubject", Method: http.MethodPost, Path: "/edit_subject/{id}", Handler: h.requireUser(h.EditSubject)},
		{Name: "DeleteSubject", Method: http.MethodPost, Path: "/delete_subject/{id}", Handler: h.requireUser(h.DeleteSubject)},

		{Name: "AddNote", Method: http.MethodPost, Path: "/add_note", Handler: h.requireUser(h.AddNote)},
		{Name: "EditNoteForm", Method: http.MethodGet, Path: "/edit_note/{id}", Handler: h.requireUser(h.EditNoteForm)},
		{Name: "EditNote", Method: http.MethodPost, Path: "/edit_note/{id}", Handler: h.requireUser(h.EditNote)},
		{Name: "DeleteNote", Method: http.MethodPost, Path: "/delete_note/{id}", Handler: h.requireUser(h.DeleteNote)},
	}
}
