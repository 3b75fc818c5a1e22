package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"notes-app/database"
	"notes-app/sessions"
	"notes-app/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDBDown = errors.New("db down: secret connection detail")

// newMockEnv serves routes over a sqlmock-backed store; the browser is already logged in as user 1
func newMockEnv(t *testing.T) (*browser, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := newHandler(t, database.NewStore(sqlx.NewDb(db, "sqlite3")), testutil.NewCache(t))

	b := &browser{t: t, router: newRouter(h.Routes()), cookies: map[string]*http.Cookie{}}
	rec := httptest.NewRecorder()
	require.NoError(t, h.sessions.Start(rec, httptest.NewRequest(http.MethodPost, "/login", nil), 1))
	for _, c := range rec.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return b, mock
}

func expectSessionUser(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT id, name, email, password FROM users WHERE id = \?`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password"}).
			AddRow(1, "Alice", "a@x.com", "hash"))
}

func assertServerError(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong")
	assert.NotContains(t, rec.Body.String(), "secret connection detail")
}

func TestDashboard_DBError(t *testing.T) {
	b, mock := newMockEnv(t)
	expectSessionUser(mock)
	mock.ExpectQuery(`SELECT id, user_id, name FROM subjects`).WithArgs(1).WillReturnError(errDBDown)

	assertServerError(t, b.get("/dashboard"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboard_NotesDBError(t *testing.T) {
	b, mock := newMockEnv(t)
	expectSessionUser(mock)
	mock.ExpectQuery(`SELECT id, user_id, name FROM subjects`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name"}).AddRow(3, 1, "Math"))
	mock.ExpectQuery(`SELECT id, subject_id, title, content FROM notes`).WithArgs(3).WillReturnError(errDBDown)

	assertServerError(t, b.get("/dashboard"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionLookup_DBError(t *testing.T) {
	b, mock := newMockEnv(t)
	mock.ExpectQuery(`SELECT id, name, email, password FROM users WHERE id = \?`).WithArgs(1).WillReturnError(errDBDown)

	assertServerError(t, b.get("/dashboard"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_DBError(t *testing.T) {
	b, mock := newMockEnv(t)
	mock.ExpectQuery(`SELECT id, name, email, password FROM users WHERE email = \?`).
		WithArgs("a@x.com").WillReturnError(errDBDown)

	assertServerError(t, b.post("/login", url.Values{"email": {"a@x.com"}, "password": {"pw"}}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_DBError(t *testing.T) {
	b, mock := newMockEnv(t)
	mock.ExpectQuery(`SELECT id, name, email, password FROM users WHERE email = \?`).
		WithArgs("a@x.com").WillReturnError(errDBDown)

	assertServerError(t, b.post("/register", url.Values{"name": {"A"}, "email": {"a@x.com"}, "password": {"pw"}}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSubject_DBError(t *testing.T) {
	b, mock := newMockEnv(t)
	expectSessionUser(mock)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM notes`).WithArgs(3, 1).WillReturnError(errDBDown)
	mock.ExpectRollback()

	assertServerError(t, b.post("/delete_subject/3", url.Values{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHealth_DBDown(t *testing.T) {
	b, mock := newMockEnv(t)
	mock.ExpectPing().WillReturnError(errDBDown)

	rec := b.get("/health")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Database unavailable")
	assert.NotContains(t, rec.Body.String(), "secret connection detail")
	require.NoError(t, mock.ExpectationsWereMet())
}

// dropFailingCache loses every Delete
type dropFailingCache struct {
	sessions.Cache
}

func (dropFailingCache) Delete(string) error { return errors.New("cache unavailable") }

func TestLogout_CacheDeleteFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := newHandler(t, database.NewStore(sqlx.NewDb(db, "sqlite3")), dropFailingCache{testutil.NewCache(t)})
	b := &browser{t: t, router: newRouter(h.Routes()), cookies: map[string]*http.Cookie{}}
	rec := httptest.NewRecorder()
	require.NoError(t, h.sessions.Start(rec, httptest.NewRequest(http.MethodPost, "/login", nil), 1))
	for _, c := range rec.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	expectSessionUser(mock)

	// the cookie is still expired so the browser is logged out
	assertRedirect(t, b.get("/logout"), "/login")
	assert.Empty(t, b.cookies)
	require.NoError(t, mock.ExpectationsWereMet())
}
