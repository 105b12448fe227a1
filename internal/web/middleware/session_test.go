package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/listingdesk/internal/core"
	"github.com/JonMunkholm/listingdesk/internal/logging"
)

func sessionHandler(t *testing.T, manager *core.SessionManager, seen *string) http.Handler {
	t.Helper()
	return Sessions(manager, "sid")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFrom(r.Context())
		require.True(t, ok)
		assert.Equal(t, sess.ID, logging.SessionID(r.Context()))
		*seen = sess.ID
	}))
}

func TestSessions_IssuesCookie(t *testing.T) {
	manager := core.NewSessionManager(nil, nil, nil, core.SessionOptions{})
	var seen string
	h := sessionHandler(t, manager, &seen)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, seen, cookies[0].Value)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
}

func TestSessions_ReusesCookie(t *testing.T) {
	manager := core.NewSessionManager(nil, nil, nil, core.SessionOptions{})
	var first, second string

	rec := httptest.NewRecorder()
	sessionHandler(t, manager, &first).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := rec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	sessionHandler(t, manager, &second).ServeHTTP(rec, req)

	assert.Equal(t, first, second)
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, 1, manager.Len())
}

func TestSessions_ReplacesMalformedCookie(t *testing.T) {
	manager := core.NewSessionManager(nil, nil, nil, core.SessionOptions{})
	var seen string

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "not-a-uuid"})
	rec := httptest.NewRecorder()
	sessionHandler(t, manager, &seen).ServeHTTP(rec, req)

	require.Len(t, rec.Result().Cookies(), 1)
	assert.NotEqual(t, "not-a-uuid", seen)
}

func TestSessionFrom_Missing(t *testing.T) {
	_, ok := SessionFrom(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
