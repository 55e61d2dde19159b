package core

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestUsable(t *testing.T) {
	cases := []struct {
		in *float64
		ok bool
	}{
		{nil, false},
		{ptr(0), true},
		{ptr(-12.5), true},
		{ptr(math.NaN()), false},
		{ptr(math.Inf(1)), false},
	}
	for i, tc := range cases {
		if got := Usable(tc.in); got != tc.ok {
			t.Fatalf("case %d: Usable() = %v, want %v", i, got, tc.ok)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	goal := ID(7)
	good := Expense{Amount: 10, Category: "Їжа", Subcategory: "Кафе", AccountID: 1, Date: NewDate(2025, 1, 1)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name string
		e    Expense
		want error
	}{
		{"zero amount", Expense{Amount: 0, Category: "c", AccountID: 1}, ErrInvalidAmount},
		{"negative amount", Expense{Amount: -1, Category: "c", AccountID: 1}, ErrInvalidAmount},
		{"nan amount", Expense{Amount: math.NaN(), Category: "c", AccountID: 1}, ErrInvalidAmount},
		{"blank category", Expense{Amount: 1, Category: "  ", AccountID: 1}, ErrEmptyCategory},
		{"no account", Expense{Amount: 1, Category: "c"}, ErrMissingAccount},
		{"goal without id", Expense{Amount: 1, Category: GoalCategory, AccountID: 1}, ErrUnknownGoal},
		{"goal with id", Expense{Amount: 1, Category: GoalCategory, AccountID: 1, GoalID: &goal}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.e.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTransferValidate(t *testing.T) {
	tests := []struct {
		name string
		tr   Transfer
		want error
	}{
		{"ok", Transfer{FromAccountID: 1, ToAccountID: 2, Amount: 5}, nil},
		{"same account", Transfer{FromAccountID: 1, ToAccountID: 1, Amount: 5}, ErrSameAccount},
		{"missing endpoint", Transfer{FromAccountID: 1, Amount: 5}, ErrMissingAccount},
		{"zero amount", Transfer{FromAccountID: 1, ToAccountID: 2}, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.tr.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGoalProgress(t *testing.T) {
	tests := []struct {
		name      string
		g         Goal
		percent   int
		completed bool
	}{
		{"half", Goal{Target: 100, Saved: 50}, 50, false},
		{"reached", Goal{Target: 100, Saved: 100}, 100, true},
		{"overshoot capped", Goal{Target: 100, Saved: 250}, 100, true},
		{"tiny target floored to one", Goal{Target: 0.5, Saved: 0.6}, 60, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.g.Percent(); got != tt.percent {
				t.Errorf("Percent() = %d, want %d", got, tt.percent)
			}
			if got := tt.g.Completed(); got != tt.completed {
				t.Errorf("Completed() = %v, want %v", got, tt.completed)
			}
		})
	}
}

func TestCreditMonthlyPayment(t *testing.T) {
	c := Credit{Name: "Car", Amount: 1200, Payments: 12, Start: "2025-01-15"}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if got := c.MonthlyPayment(); got != 100 {
		t.Fatalf("MonthlyPayment() = %v, want 100", got)
	}
	c.Start = "soon"
	if err := c.Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, 5, 1))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2024-05-01T00:00:00.000Z"` {
		t.Fatalf("Marshal = %s", b)
	}

	for _, in := range []string{`"2024-05-01"`, `"2024-05-01T00:00:00.000Z"`, `"2024-05-01T18:30:00+03:00"`} {
		var d Date
		if err := json.Unmarshal([]byte(in), &d); err != nil {
			t.Fatalf("Unmarshal(%s): %v", in, err)
		}
		if d.Key() != "2024-05-01" {
			t.Fatalf("Unmarshal(%s) = %s", in, d.Key())
		}
	}

	var empty Date
	if err := json.Unmarshal([]byte(`""`), &empty); err != nil || !empty.IsZero() {
		t.Fatalf("empty date: %v %v", empty, err)
	}
	if err := json.Unmarshal([]byte(`"yesterday"`), &empty); err == nil {
		t.Fatalf("expected error for garbage date")
	}
}

func TestIDAcceptsStrings(t *testing.T) {
	var inc Income
	if err := json.Unmarshal([]byte(`{"id":"1715","amount":5,"category":"x","accountId":"4"}`), &inc); err != nil {
		t.Fatal(err)
	}
	if inc.ID != 1715 || inc.AccountID != 4 {
		t.Fatalf("got %+v", inc)
	}
}

func TestIDGeneratorMonotonic(t *testing.T) {
	g := NewIDGenerator()
	prev := g.Next()
	for i := 0; i < 1000; i++ {
		id := g.Next()
		if id <= prev {
			t.Fatalf("id %d not greater than %d", id, prev)
		}
		prev = id
	}
	g.Observe(prev + 1000)
	if id := g.Next(); id <= prev+1000 {
		t.Fatalf("Observe ignored: %d", id)
	}
}

func TestParseGoalRef(t *testing.T) {
	cases := []struct {
		in string
		id ID
		ok bool
	}{
		{GoalLabel(7, "Відпустка"), 7, true},
		{"id:42 • Car", 42, true},
		{"prefix id:3 id:4", 3, true},
		{"ID:5 • upper", 0, false},
		{"id:abc • X", 0, false},
		{"Внесок у ціль", 0, false},
	}
	for _, tc := range cases {
		id, ok := ParseGoalRef(tc.in)
		if id != tc.id || ok != tc.ok {
			t.Fatalf("ParseGoalRef(%q) = %d,%v want %d,%v", tc.in, id, ok, tc.id, tc.ok)
		}
	}
}
