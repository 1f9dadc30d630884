package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func serveLogged(t *testing.T, status int) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	e := echo.New()
	e.Use(RequestLogger(log))
	e.GET("/ping", func(c echo.Context) error {
		c.Set("user_id", "u-1")
		return c.NoContent(status)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Code != status {
		t.Fatalf("expected %d, got %d", status, rec.Code)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	return line
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "info"},
		{http.StatusConflict, "warn"},
		{http.StatusInternalServerError, "error"},
	}

	for _, tc := range tests {
		line := serveLogged(t, tc.status)
		if line["level"] != tc.level {
			t.Errorf("status %d: expected level %s, got %v", tc.status, tc.level, line["level"])
		}
		if line["route"] != "/ping" || line["method"] != "GET" {
			t.Errorf("unexpected request fields: %+v", line)
		}
		if line["user_id"] != "u-1" {
			t.Errorf("expected user_id in log line, got %v", line["user_id"])
		}
	}
}
