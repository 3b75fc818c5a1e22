// Package views renders the HTML pages.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"notes-app/models"
	"notes-app/sessions"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names
const (
	Home        = "home"
	Register    = "register"
	Login       = "login"
	Dashboard   = "dashboard"
	EditSubject = "edit_subject"
	EditNote    = "edit_note"
	NotFound    = "not_found"
	Error       = "error"
)

var pageNames = []string{Home, Register, Login, Dashboard, EditSubject, EditNote, NotFound, Error}

// Page is the data every template receives
type Page struct {
	Title   string
	User    *models.User
	Flashes []sessions.Flash
	Data    interface{}
}

// DashboardData lists the user's subjects with their notes
type DashboardData struct {
	Subjects []models.SubjectWithNotes
}

// Renderer holds one parsed template set per page
type Renderer struct {
	pages map[string]*template.Template
}

// New parses the embedded templates
func New() (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render writes page name with status. Output is buffered so a template
// error never leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
