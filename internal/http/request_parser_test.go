package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "valid", body: `{"name":"Card","balance":10}`},
		{name: "empty body", body: "", wantErr: errBadRequest},
		{name: "malformed", body: `{"name":`, wantErr: errBadRequest},
		{name: "wrong type", body: `{"balance":"lots"}`, wantErr: errBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst struct {
				Name    string  `json:"name"`
				Balance float64 `json:"balance"`
			}
			err := decodeJSON(httptest.NewRecorder(), r, &dst)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if dst.Name != "Card" || dst.Balance != 10 {
					t.Errorf("decoded %+v", dst)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	body := `{"name":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dst map[string]string
	err := decodeJSON(httptest.NewRecorder(), r, &dst)
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		t.Errorf("expected MaxBytesError, got %v", err)
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		raw     string
		want    core.ID
		wantErr bool
	}{
		{raw: "42", want: 42},
		{raw: "1715000000000", want: 1715000000000},
		{raw: "0", wantErr: true},
		{raw: "-3", wantErr: true},
		{raw: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodDelete, "/", nil)
			r.SetPathValue("id", tt.raw)
			got, err := pathID(r, "id")
			if (err != nil) != tt.wantErr {
				t.Fatalf("pathID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errBadRequest) {
				t.Errorf("error should wrap errBadRequest: %v", err)
			}
			if got != tt.want {
				t.Errorf("pathID() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    core.ID
		wantErr error
	}{
		{name: "empty", query: ""},
		{name: "all accounts", query: "account=all"},
		{name: "account and range", query: "account=4&from=2024-01-01&to=2024-01-31", want: 4},
		{name: "bad account", query: "account=x", wantErr: errBadRequest},
		{name: "bad date", query: "from=2024-13-01", wantErr: core.ErrInvalidDate},
		{name: "timestamp bound", query: "to=2024-01-01T00:00:00Z", wantErr: core.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			f, err := ParseFilter(q)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.AccountID != tt.want {
				t.Errorf("AccountID = %d, want %d", f.AccountID, tt.want)
			}
		})
	}
}
