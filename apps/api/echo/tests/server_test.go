package tests

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomePage(t *testing.T) {
	app := setup(t)

	rec := app.serve(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, app.Conf.AppName)
	assert.Contains(t, body, "Welcome to School Management System")
	for _, card := range []string{"Multi-Role Support", "Complete Management", "Real-time Updates"} {
		assert.Contains(t, body, card)
	}
}

func TestCORS(t *testing.T) {
	app := setup(t)

	tests := []struct {
		name      string
		origin    string
		wantAllow string
	}{
		{name: "frontend origin", origin: app.Conf.FrontendURL, wantAllow: app.Conf.FrontendURL},
		{name: "other origin", origin: "http://evil.test", wantAllow: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := app.serve(req)

			assert.Equal(t, tt.wantAllow, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantAllow != "" {
				assert.Equal(t, http.StatusNoContent, rec.Code)
				assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	app := setup(t)

	rec := app.serve(newRequest(http.MethodGet, "/api/lol"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
}
