package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/reports"
)

const (
	maxBodyBytes   = 1 << 20
	maxImportBytes = 16 << 20
)

// errBadRequest marks input that could not be read at all, as opposed to
// input that was read and failed validation.
var errBadRequest = errors.New("bad request")

// decodeJSON reads one JSON value from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: malformed JSON: %v", errBadRequest, err)
	}
	return nil
}

// pathID parses the {name} wildcard as a positive record id.
func pathID(r *http.Request, name string) (core.ID, error) {
	raw := r.PathValue(name)
	id, err := core.ParseID(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, name, raw)
	}
	return id, nil
}

// pathName returns the {name} wildcard with control characters removed.
func pathName(r *http.Request, name string) string {
	return sanitizeInput(r.PathValue(name))
}

// ParseFilter reads account, from and to from the query string.
func ParseFilter(query url.Values) (reports.Filter, error) {
	f := reports.Filter{
		From: strings.TrimSpace(query.Get("from")),
		To:   strings.TrimSpace(query.Get("to")),
	}
	if v := query.Get("account"); v != "" && v != "all" {
		id, err := core.ParseID(v)
		if err != nil {
			return reports.Filter{}, fmt.Errorf("%w: invalid account %q", errBadRequest, v)
		}
		f.AccountID = id
	}
	if err := f.Validate(); err != nil {
		return reports.Filter{}, err
	}
	return f, nil
}

// ParseMonth reads the month query parameter. Empty means current month.
func ParseMonth(query url.Values) string {
	return strings.TrimSpace(query.Get("month"))
}
