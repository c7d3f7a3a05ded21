package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestFromCtx_FallsBackToDefault(t *testing.T) {
	if FromCtx(context.Background()) != slog.Default() {
		t.Fatal("expected the default logger")
	}

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if FromCtx(WithLogger(context.Background(), logger)) != logger {
		t.Fatal("expected the context logger")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestMiddleware_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", "json")

	var sawLogger bool
	h := middleware.RequestID(Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = FromCtx(r.Context()) != slog.Default()
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))

	if !sawLogger {
		t.Fatal("expected a request-scoped logger in the handler context")
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}
	if line["msg"] != "http request" || line["path"] != "/events" {
		t.Fatalf("unexpected log line: %v", line)
	}
	if line["status"] != float64(http.StatusTeapot) {
		t.Fatalf("expected status 418, got %v", line["status"])
	}
	if line["request_id"] == "" || line["request_id"] == nil {
		t.Fatalf("expected a request id, got %v", line["request_id"])
	}
}
