package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	var seenID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetRequestIDFromContext(r.Context())
		if !ok || id == "" {
			t.Fatalf("request id not in context")
		}
		seenID = id
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/sales?date=2026-10-18", nil)
	Logger(logger)(next).ServeHTTP(w, r)

	if got := w.Header().Get(RequestIDHeader); got != seenID {
		t.Fatalf("response request id = %q, want %q", got, seenID)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) {
		t.Fatalf("status field = %v, want %d", fields["status"], http.StatusTeapot)
	}
	if fields["size"] != int64(len("short and stout")) {
		t.Fatalf("size field = %v", fields["size"])
	}
	if fields["uri"] != "/api/sales?date=2026-10-18" {
		t.Fatalf("uri field = %v", fields["uri"])
	}
}

func TestLogger_KeepsIncomingRequestID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.Header.Set(RequestIDHeader, "abc-123")

	Logger(zap.NewNop())(next).ServeHTTP(w, r)

	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("request id = %q, want abc-123", got)
	}
}
