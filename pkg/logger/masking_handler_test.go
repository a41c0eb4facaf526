package logger

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskingHandler(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMaskingHandler(slog.NewTextHandler(&buf, nil)))

	log.Info("starting bot",
		slog.String("token", "123:secret-token"),
		slog.String("api_key", "owm-key"),
		slog.String("city", "Paris"),
	)

	out := buf.String()
	assert.NotContains(t, out, "secret-token")
	assert.NotContains(t, out, "owm-key")
	assert.Contains(t, out, "***")
	assert.Contains(t, out, "Paris")
}

func TestMaskingHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMaskingHandler(slog.NewTextHandler(&buf, nil)))

	log.With(slog.String("token", "123:secret-token")).Info("update handled")

	assert.NotContains(t, buf.String(), "secret-token")
}

func TestMiddleware_CorrelationID(t *testing.T) {
	var seen string
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CorrelationIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Correlation-ID"))
}

func TestNew_Levels(t *testing.T) {
	log := New(Options{Level: "warn", Format: "json"})

	assert.False(t, log.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, log.Enabled(t.Context(), slog.LevelWarn))
}
