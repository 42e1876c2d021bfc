package telemetry

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolsaas/core"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics("test")
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/students/:id", func(ctx echo.Context) error { return ctx.NoContent(http.StatusOK) })
	e.GET("/boom", func(ctx echo.Context) error { return echo.ErrForbidden })

	for _, path := range []string{"/students/1", "/students/2", "/boom"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `test_http_requests_total{code="200",method="GET",route="/students/:id"} 2`)
	assert.Contains(t, body, `test_http_requests_total{code="403",method="GET",route="/boom"} 1`)
	assert.Contains(t, body, "test_http_request_duration_seconds")
}

func TestTrace(t *testing.T) {
	conf := &core.Config{Env: "TEST", Build: "test", Telemetry: core.TelemetryConfig{ServiceName: "api-test"}}
	buf := new(bytes.Buffer)
	tp, err := NewTracerProvider(conf, buf)
	require.NoError(t, err)

	h := Trace(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), tp, "api")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	require.NoError(t, Shutdown(context.Background(), tp))
	assert.Contains(t, buf.String(), "api-test")
	assert.NoError(t, Shutdown(context.Background(), nil))
}
