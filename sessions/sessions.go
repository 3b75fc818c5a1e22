// Package sessions keeps cookie-identified login sessions and their flash
// messages in a key/value cache (Redis in production).
package sessions

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const sessionKeyPrefix = "session:"

// ErrNoSession is returned when the request carries no usable session
var ErrNoSession = errors.New("no session")

// Cache is the subset of the go-utils cache the manager needs
type Cache interface {
	Get(key string) (interface{}, error)
	Set(key string, value interface{}, ttl time.Duration) error
	Delete(key string) error
}

// Flash is a one-shot status message shown on the next rendered page
type Flash struct {
	Category string `json:"category"` // "success", "danger", "info"
	Message  string `json:"message"`
}

type record struct {
	UserID  int     `json:"user_id,omitempty"`
	Flashes []Flash `json:"flashes,omitempty"`
}

// Options configure the session cookie
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager binds requests to sessions
type Manager struct {
	cache Cache
	opts  Options
}

func NewManager(cache Cache, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "session_id"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Manager{cache: cache, opts: opts}
}

// genSessionID generates unique session ID for cookies
func genSessionID() string {
	return uuid.New().String()
}

// Start binds userID to a fresh session id. Pending flashes carry over.
func (m *Manager) Start(w http.ResponseWriter, r *http.Request, userID int) error {
	rec := record{UserID: userID}
	if id, old, err := m.load(r); err == nil {
		rec.Flashes = old.Flashes
		if err := m.cache.Delete(sessionKeyPrefix + id); err != nil {
			return fmt.Errorf("drop old session: %w", err)
		}
	}

	id := genSessionID()
	if err := m.save(id, rec); err != nil {
		return err
	}
	r.AddCookie(&http.Cookie{Name: m.opts.CookieName, Value: id})
	m.setCookie(w, id)
	return nil
}

// End expires the cookie and drops the session record.
// The cookie is expired even when the record could not be deleted.
func (m *Manager) End(w http.ResponseWriter, r *http.Request) error {
	var err error
	if id := m.cookieValue(r); id != "" {
		if derr := m.cache.Delete(sessionKeyPrefix + id); derr != nil {
			err = fmt.Errorf("drop session: %w", derr)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.opts.Secure,
		MaxAge:   -1,
	})
	return err
}

// UserID returns the identity bound to the request's session
func (m *Manager) UserID(r *http.Request) (int, bool) {
	_, rec, err := m.load(r)
	if err != nil || rec.UserID == 0 {
		return 0, false
	}
	return rec.UserID, true
}

// Flash queues a message, opening an anonymous session if needed.
// The load and save are not atomic: two concurrent requests from one browser can drop a flash.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, category, message string) error {
	id, rec, err := m.load(r)
	if err != nil {
		id = genSessionID()
		rec = record{}
		// later reads in this request must see the new id
		r.AddCookie(&http.Cookie{Name: m.opts.CookieName, Value: id})
		m.setCookie(w, id)
	}
	rec.Flashes = append(rec.Flashes, Flash{Category: category, Message: message})
	return m.save(id, rec)
}

// Flashes returns and clears the queued messages. When clearing fails the
// messages are still returned along with the error.
func (m *Manager) Flashes(r *http.Request) ([]Flash, error) {
	id, rec, err := m.load(r)
	if err != nil || len(rec.Flashes) == 0 {
		return nil, nil
	}
	flashes := rec.Flashes
	rec.Flashes = nil
	if err := m.save(id, rec); err != nil {
		return flashes, fmt.Errorf("clear flashes: %w", err)
	}
	return flashes, nil
}

func (m *Manager) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true, // Prevent JS access
		SameSite: http.SameSiteLaxMode,
		Secure:   m.opts.Secure,
		MaxAge:   int(m.opts.TTL.Seconds()),
	})
}

func (m *Manager) save(id string, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := m.cache.Set(sessionKeyPrefix+id, string(data), m.opts.TTL); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// load reads the session named by the request cookie.
// The cache may hand back the stored string, raw bytes or an already-decoded map.
func (m *Manager) load(r *http.Request) (string, record, error) {
	var rec record

	id := m.cookieValue(r)
	if id == "" {
		return "", rec, ErrNoSession
	}

	raw, err := m.cache.Get(sessionKeyPrefix + id)
	if err != nil || raw == nil {
		return "", rec, ErrNoSession
	}

	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	case map[string]interface{}:
		if data, err = json.Marshal(v); err != nil {
			return "", rec, ErrNoSession
		}
	default:
		return "", rec, ErrNoSession
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", rec, ErrNoSession
	}
	return id, rec, nil
}

// cookieValue prefers the last cookie so ids added during this request win
func (m *Manager) cookieValue(r *http.Request) string {
	value := ""
	for _, c := range r.Cookies() {
		if c.Name == m.opts.CookieName && c.Value != "" {
			value = c.Value
		}
	}
	return value
}
