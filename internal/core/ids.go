package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ID identifies every ledger record. Fresh ids are millisecond timestamps.
type ID int64

// ParseID parses a decimal id. Empty input yields 0.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID(v), nil
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// UnmarshalJSON accepts both numbers and numeric strings, since older
// records stored ids straight from form fields.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*id = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := ParseID(s)
		if err != nil {
			return err
		}
		*id = v
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*id = ID(int64(f))
	return nil
}

// IDGenerator hands out strictly increasing timestamp ids.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// NewIDGeneratorWithClock is used by tests to pin time.
func NewIDGeneratorWithClock(now func() time.Time) *IDGenerator {
	return &IDGenerator{now: now}
}

func (g *IDGenerator) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	v := g.now().UnixMilli()
	if v <= g.last {
		v = g.last + 1
	}
	g.last = v
	return ID(v)
}

// Observe makes sure future ids are above id.
func (g *IDGenerator) Observe(id ID) {
	g.mu.Lock()
	if int64(id) > g.last {
		g.last = int64(id)
	}
	g.mu.Unlock()
}

var goalRefPattern = regexp.MustCompile(`id:([^ ]+)`)

// GoalLabel is the display subcategory of a goal contribution.
func GoalLabel(goalID ID, goalName string) string {
	return fmt.Sprintf("id:%d • %s", goalID, goalName)
}

// ParseGoalRef extracts the goal id from a legacy subcategory label.
// The first "id:<token>" match wins; tokens that are not integers are rejected.
func ParseGoalRef(subcategory string) (ID, bool) {
	m := goalRefPattern.FindStringSubmatch(subcategory)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return ID(v), true
}
