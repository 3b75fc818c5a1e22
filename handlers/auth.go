package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"notes-app/auth"
	"notes-app/database"
	"notes-app/models"
	"notes-app/views"

	"go.uber.org/zap"
)

// Home handles GET / - landing page
func (h *NotesHandler) Home(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	h.render(ctx, w, r, http.StatusOK, views.Home, "Home", h.currentUser(ctx, r), nil)
}

// RegisterForm handles GET /register
func (h *NotesHandler) RegisterForm(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	h.render(ctx, w, r, http.StatusOK, views.Register, "Register", h.currentUser(ctx, r), nil)
}

// Register handles POST /register - creates the account, then sends the user to /login
func (h *NotesHandler) Register(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	form := models.RegisterForm{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}

	if form.Name == "" || form.Email == "" || form.Password == "" {
		logRequest(ctx, "info", "Missing registration fields", zap.String("email", form.Email))
		h.flashRedirect(ctx, w, r, "danger", "All fields are required!", "/register")
		return
	}
	if len(form.Password) > auth.MaxPasswordLength {
		h.flashRedirect(ctx, w, r, "danger", "Password is too long!", "/register")
		return
	}

	logRequest(ctx, "info", "Registering user", zap.String("email", form.Email))

	_, err := h.store.FindUserByEmail(ctx, form.Email)
	if err == nil {
		logRequest(ctx, "info", "Email already registered", zap.String("email", form.Email))
		h.flashRedirect(ctx, w, r, "danger", "Email already exists!", "/register")
		return
	}
	if !errors.Is(err, database.ErrNotFound) {
		h.serverError(ctx, w, r, nil, "Failed to look up email", err)
		return
	}

	hashedPassword, err := h.hasher.HashPassword(form.Password)
	if err != nil {
		h.serverError(ctx, w, r, nil, "Password hashing failed", err)
		return
	}

	user, err := h.store.InsertUser(ctx, form.Name, form.Email, hashedPassword)
	if errors.Is(err, database.ErrEmailTaken) {
		// lost a race with a concurrent registration
		h.flashRedirect(ctx, w, r, "danger", "Email already exists!", "/register")
		return
	}
	if err != nil {
		h.serverError(ctx, w, r, nil, "Failed to create user", err)
		return
	}

	logRequest(ctx, "info", "User registered", zap.Int("user_id", user.ID))
	h.flashRedirect(ctx, w, r, "success", "Registration successful! Please log in.", "/login")
}

// LoginForm handles GET /login
func (h *NotesHandler) LoginForm(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	h.render(ctx, w, r, http.StatusOK, views.Login, "Login", h.currentUser(ctx, r), nil)
}

// Login handles POST /login - verifies the password and starts a session
func (h *NotesHandler) Login(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	form := models.LoginForm{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}

	user, err := h.store.FindUserByEmail(ctx, form.Email)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		h.serverError(ctx, w, r, nil, "Failed to look up user", err)
		return
	}
	if user == nil || !h.hasher.VerifyPassword(form.Password, user.Password) {
		logRequest(ctx, "info", "Invalid credentials", zap.String("email", form.Email))
		h.flashRedirect(ctx, w, r, "danger", "Invalid login credentials!", "/login")
		return
	}

	if err := h.sessions.Start(w, r, user.ID); err != nil {
		h.serverError(ctx, w, r, nil, "Failed to start session", err)
		return
	}

	logRequest(ctx, "info", "Login successful", zap.Int("user_id", user.ID))
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Logout handles GET /logout
func (h *NotesHandler) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User) {
	if err := h.sessions.End(w, r); err != nil {
		logRequest(ctx, "error", "Failed to drop session", zap.Int("user_id", user.ID), zap.Error(err))
	}
	logRequest(ctx, "info", "Logged out", zap.Int("user_id", user.ID))
	http.Redirect(w, r, "/login", http.StatusFound)
}
