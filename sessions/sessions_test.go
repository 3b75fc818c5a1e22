package sessions

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"notes-app/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umakantv/go-utils/cache"
)

func newManager(t *testing.T) (*Manager, cache.Cache) {
	c := testutil.NewCache(t)
	return NewManager(c, Options{CookieName: "sid", TTL: time.Hour}), c
}

// failingCache wraps a real cache and fails the chosen operations
type failingCache struct {
	cache.Cache
	failDelete bool
	failSet    bool
}

var errCacheDown = errors.New("cache down")

func (c *failingCache) Delete(key string) error {
	if c.failDelete {
		return errCacheDown
	}
	return c.Cache.Delete(key)
}

func (c *failingCache) Set(key string, value interface{}, ttl time.Duration) error {
	if c.failSet {
		return errCacheDown
	}
	return c.Cache.Set(key, value, ttl)
}

func assertMissing(t *testing.T, c cache.Cache, id string) {
	t.Helper()
	_, err := c.Get(sessionKeyPrefix + id)
	assert.ErrorIs(t, err, cache.ErrKeyNotFound)
}

func popFlashes(t *testing.T, m *Manager, r *http.Request) []Flash {
	t.Helper()
	flashes, err := m.Flashes(r)
	require.NoError(t, err)
	return flashes
}

// follow returns a request carrying the cookies set on rec
func follow(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			r.AddCookie(c)
		}
	}
	return r
}

func TestStart_BindsUser(t *testing.T) {
	m, _ := newManager(t)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Start(rec, httptest.NewRequest(http.MethodPost, "/login", nil), 7))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	// every later request resolves to the same user
	for i := 0; i < 3; i++ {
		id, ok := m.UserID(follow(rec))
		require.True(t, ok)
		assert.Equal(t, 7, id)
	}
}

func TestUserID_NoOrUnknownCookie(t *testing.T) {
	m, _ := newManager(t)

	_, ok := m.UserID(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "sid", Value: "forged"})
	_, ok = m.UserID(r)
	assert.False(t, ok)
}

func TestStart_RotatesID(t *testing.T) {
	m, c := newManager(t)

	first := httptest.NewRecorder()
	require.NoError(t, m.Start(first, httptest.NewRequest(http.MethodPost, "/login", nil), 1))
	oldReq := follow(first)

	second := httptest.NewRecorder()
	require.NoError(t, m.Start(second, oldReq, 2))

	oldID := first.Result().Cookies()[0].Value
	newID := second.Result().Cookies()[0].Value
	assert.NotEqual(t, oldID, newID)
	_, ok := m.UserID(follow(first))
	assert.False(t, ok, "old id must be dropped")
	assertMissing(t, c, oldID)
	assert.True(t, c.Exists(sessionKeyPrefix+newID))
}

func TestEnd_ClearsIdentity(t *testing.T) {
	m, c := newManager(t)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Start(rec, httptest.NewRequest(http.MethodPost, "/login", nil), 7))
	r := follow(rec)

	out := httptest.NewRecorder()
	require.NoError(t, m.End(out, r))

	cookies := out.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assertMissing(t, c, rec.Result().Cookies()[0].Value)

	_, ok := m.UserID(r)
	assert.False(t, ok)
}

func TestFlash_OneShot(t *testing.T) {
	m, _ := newManager(t)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/register", nil)
	require.NoError(t, m.Flash(rec, r, "danger", "Email already exists!"))
	require.NoError(t, m.Flash(rec, r, "info", "second"))

	next := follow(rec)
	assert.Equal(t, []Flash{
		{Category: "danger", Message: "Email already exists!"},
		{Category: "info", Message: "second"},
	}, popFlashes(t, m, next))
	assert.Empty(t, popFlashes(t, m, next))

	// anonymous session carries no identity
	_, ok := m.UserID(next)
	assert.False(t, ok)
}

func TestFlash_SurvivesLogin(t *testing.T) {
	m, _ := newManager(t)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/register", nil)
	require.NoError(t, m.Flash(rec, r, "success", "Registration successful! Please log in."))

	login := httptest.NewRecorder()
	lr := follow(rec)
	require.NoError(t, m.Start(login, lr, 3))

	next := follow(login)
	id, ok := m.UserID(next)
	require.True(t, ok)
	assert.Equal(t, 3, id)
	assert.Len(t, popFlashes(t, m, next), 1)
}

func TestFlash_AfterStartSameRequest(t *testing.T) {
	m, c := newManager(t)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	require.NoError(t, m.Start(rec, r, 4))
	require.NoError(t, m.Flash(rec, r, "success", "hi"))

	// the flash lands in the session Start opened, not a new anonymous one
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, c.Exists(sessionKeyPrefix+cookies[0].Value))
	id, ok := m.UserID(r)
	require.True(t, ok)
	assert.Equal(t, 4, id)
	assert.Len(t, popFlashes(t, m, r), 1)
}

func TestLoad_DecodedMapFromCache(t *testing.T) {
	m, c := newManager(t)

	// some cache backends hand back decoded JSON
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"user_id":9}`), &decoded))
	require.NoError(t, c.Set(sessionKeyPrefix+"abc", decoded, time.Hour))
	require.NoError(t, c.Set(sessionKeyPrefix+"raw", []byte(`{"user_id":10}`), time.Hour))
	require.NoError(t, c.Set(sessionKeyPrefix+"bad", 12, time.Hour))

	for value, want := range map[string]int{"abc": 9, "raw": 10, "bad": 0} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "sid", Value: value})
		id, ok := m.UserID(r)
		assert.Equal(t, want != 0, ok, value)
		assert.Equal(t, want, id, value)
	}
}

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager(testutil.NewCache(t), Options{})
	assert.Equal(t, "session_id", m.opts.CookieName)
	assert.Equal(t, 24*time.Hour, m.opts.TTL)
}

func TestStart_FailsWhenOldSessionSurvives(t *testing.T) {
	c := &failingCache{Cache: testutil.NewCache(t)}
	m := NewManager(c, Options{CookieName: "sid", TTL: time.Hour})

	first := httptest.NewRecorder()
	require.NoError(t, m.Start(first, httptest.NewRequest(http.MethodPost, "/login", nil), 1))

	c.failDelete = true
	second := httptest.NewRecorder()
	err := m.Start(second, follow(first), 2)
	assert.ErrorIs(t, err, errCacheDown)
	assert.Empty(t, second.Result().Cookies(), "no new session is issued")
}

func TestEnd_ReportsDeleteFailure(t *testing.T) {
	c := &failingCache{Cache: testutil.NewCache(t)}
	m := NewManager(c, Options{CookieName: "sid", TTL: time.Hour})

	rec := httptest.NewRecorder()
	require.NoError(t, m.Start(rec, httptest.NewRequest(http.MethodPost, "/login", nil), 7))

	c.failDelete = true
	out := httptest.NewRecorder()
	assert.ErrorIs(t, m.End(out, follow(rec)), errCacheDown)

	// the cookie is expired regardless
	cookies := out.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestFlashes_ReportsClearFailure(t *testing.T) {
	c := &failingCache{Cache: testutil.NewCache(t)}
	m := NewManager(c, Options{CookieName: "sid", TTL: time.Hour})

	rec := httptest.NewRecorder()
	require.NoError(t, m.Flash(rec, httptest.NewRequest(http.MethodPost, "/register", nil), "info", "hello"))
	next := follow(rec)

	c.failSet = true
	flashes, err := m.Flashes(next)
	assert.ErrorIs(t, err, errCacheDown)
	assert.Equal(t, []Flash{{Category: "info", Message: "hello"}}, flashes)

	c.failSet = false
	assert.Len(t, popFlashes(t, m, next), 1, "uncleared flashes are shown again")
}

func TestCache_GoUtilsCacheSatisfiesManager(t *testing.T) {
	var c Cache = testutil.NewCache(t)
	m := NewManager(c, Options{})
	rec := httptest.NewRecorder()
	require.NoError(t, m.Start(rec, httptest.NewRequest(http.MethodPost, "/login", nil), 5))
	id, ok := m.UserID(follow(rec))
	require.True(t, ok)
	assert.Equal(t, 5, id)
}
