package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsRequest(t *testing.T, origins []string, origin, method string) *httptest.ResponseRecorder {
	t.Helper()
	handler := CORS(origins)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestCORSWildcard(t *testing.T) {
	rr := corsRequest(t, []string{"*"}, "https://anywhere.example", http.MethodGet)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	rr = corsRequest(t, nil, "https://anywhere.example", http.MethodGet)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAllowList(t *testing.T) {
	origins := []string{"https://app.example", "https://admin.example"}

	rr := corsRequest(t, origins, "https://app.example", http.MethodGet)
	assert.Equal(t, "https://app.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Values("Vary"), "Origin")

	rr = corsRequest(t, origins, "https://evil.example", http.MethodGet)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	rr := corsRequest(t, []string{"*"}, "https://app.example", http.MethodOptions)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
}
