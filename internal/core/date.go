package core

import (
	"encoding/json"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// Date is a calendar day in UTC. It is stored as an ISO timestamp at
// midnight, e.g. "2024-05-01T00:00:00.000Z".
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the calendar day of t in UTC.
func Today(t time.Time) Date {
	t = t.UTC()
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDay parses the first ten characters of s as YYYY-MM-DD. Full ISO
// timestamps are accepted and truncated to their day.
func ParseDay(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(dayLayout) {
		return Date{}, ErrInvalidDate
	}
	t, err := time.Parse(dayLayout, s[:len(dayLayout)])
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Key returns YYYY-MM-DD, or "" for the zero date.
func (d Date) Key() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dayLayout)
}

// MonthKey returns YYYY-MM, or "" for the zero date.
func (d Date) MonthKey() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Key() + "T00:00:00.000Z")
}

// UnmarshalJSON accepts "", null, YYYY-MM-DD and ISO timestamps.
func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
