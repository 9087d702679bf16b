package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eldplan/internal/middleware"
)

// sessionEcho writes the session id it finds in the request context.
var sessionEcho = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.SessionID(r.Context())
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte(id.String()))
})

func TestSessionHandler_NoCookie_IssuesOne(t *testing.T) {
	h := middleware.NewSessionHandler(false)(sessionEcho)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, cookies[0].Value, rec.Body.String())
	_, err := uuid.Parse(cookies[0].Value)
	assert.NoError(t, err)
}

func TestSessionHandler_ValidCookie_Reused(t *testing.T) {
	h := middleware.NewSessionHandler(false)(sessionEcho)
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: id.String()})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, id.String(), rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
}

func TestSessionHandler_MalformedCookie_Replaced(t *testing.T) {
	h := middleware.NewSessionHandler(true)(sessionEcho)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "not-a-uuid"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.NotEqual(t, "not-a-uuid", cookies[0].Value)
	assert.True(t, cookies[0].Secure)
}
