package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eldplan/internal/middleware"
)

const pageHost = "https://planner.example.com"

// corsChain is the CORS layer in front of the session layer, the way serve
// mounts them, with a handler that only answers 200.
func corsChain(origins ...string) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	return middleware.NewCORSHandler(origins)(middleware.NewSessionHandler(false)(ok))
}

func TestCORSHandler_SimpleRequests(t *testing.T) {
	tests := []struct {
		name        string
		origin      string
		wantAllowed bool
	}{
		{"configured page host", pageHost, true},
		{"unknown host", "https://elsewhere.example.com", false},
		{"same origin sends no Origin", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/plan/inputs/pickup/suggestions", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rec := httptest.NewRecorder()

			corsChain(pageHost).ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code, "CORS never blocks the request itself")
			if !tc.wantAllowed {
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
				return
			}
			assert.Equal(t, tc.origin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"),
				"the session cookie only crosses origins with credentials allowed")
		})
	}
}

func TestCORSHandler_PreflightForPlanEdits(t *testing.T) {
	for _, method := range []string{http.MethodPut, http.MethodPost, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/plan/inputs/current", nil)
			req.Header.Set("Origin", pageHost)
			req.Header.Set("Access-Control-Request-Method", method)
			// Browsers lowercase the requested header names.
			req.Header.Set("Access-Control-Request-Headers", "content-type")
			rec := httptest.NewRecorder()

			corsChain(pageHost).ServeHTTP(rec, req)

			assert.Less(t, rec.Code, 300)
			assert.Equal(t, pageHost, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
			assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), method)
		})
	}
}

func TestCORSHandler_PreflightRejectsUnlistedMethod(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/plan", nil)
	req.Header.Set("Origin", pageHost)
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()

	corsChain(pageHost).ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
}
