package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	applog "fintrack/internal/log"
)

func TestMiddleware_AssignsRequestID(t *testing.T) {
	var seen string
	m := NewMiddleware(func(*http.Request) string { return "198.51.100.1" })
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/accounts", nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("request id %q is not a uuid: %v", seen, err)
	}
	if rec.Header().Get(HeaderRequestID) != seen {
		t.Errorf("response header %q does not match context id %q", rec.Header().Get(HeaderRequestID), seen)
	}
	if m.TotalRequests() != 1 {
		t.Errorf("TotalRequests() = %d", m.TotalRequests())
	}
}

func TestMiddleware_KeepsIncomingRequestID(t *testing.T) {
	incoming := uuid.NewString()
	h := NewMiddleware(nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := GetRequestID(r.Context()); got != incoming {
			t.Errorf("GetRequestID() = %q, want %q", got, incoming)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, incoming)
	h.ServeHTTP(httptest.NewRecorder(), req)
}

func TestMiddleware_ReplacesInvalidRequestID(t *testing.T) {
	h := NewMiddleware(nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "<script>")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(HeaderRequestID); got == "<script>" || got == "" {
		t.Errorf("expected a fresh id, got %q", got)
	}
}

func TestMiddleware_LogsCompletionWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Output: &buf, Component: applog.ComponentHTTP})

	h := NewMiddleware(nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	r := httptest.NewRequest(http.MethodGet, "/api/goals/9", nil)
	h.ServeHTTP(httptest.NewRecorder(), r.WithContext(applog.NewContext(r.Context(), logger)))

	out := buf.String()
	for _, want := range []string{"HTTP request completed", "level=WARN", "status_code=404", "success=false", "request_id="} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %s", want, out)
		}
	}
}
