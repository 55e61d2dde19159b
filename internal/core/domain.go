package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

// Reserved expense categories and defaults used across the ledger.
const (
	GoalCategory                = "Цілі"
	OtherCategory               = "Інше"
	GoalContributionSubcategory = "Внесок у ціль"

	DefaultAccountType = "cash"
	DefaultCapitalName = "Капітал"
	DefaultAssetType   = "Інше"
	DefaultAssetTrend  = "Стабільний"
)

const (
	UAH Currency = "UAH"
	USD Currency = "USD"
	EUR Currency = "EUR"
)

type (
	Currency string

	Account struct {
		ID             ID       `json:"id"`
		Name           string   `json:"name"`
		Type           string   `json:"type"`
		Currency       Currency `json:"currency"`
		Balance        float64  `json:"balance"`
		InitialBalance *float64 `json:"initialBalance,omitempty"`
	}

	Income struct {
		ID        ID      `json:"id"`
		Amount    float64 `json:"amount"`
		Category  string  `json:"category"`
		AccountID ID      `json:"accountId"`
		Date      Date    `json:"date"`
	}

	Expense struct {
		ID          ID      `json:"id"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Subcategory string  `json:"subcategory"`
		AccountID   ID      `json:"accountId"`
		Date        Date    `json:"date"`
		GoalID      *ID     `json:"goalId,omitempty"` // set only for goal contributions
	}

	Transfer struct {
		ID            ID      `json:"id"`
		FromAccountID ID      `json:"fromAccountId"`
		ToAccountID   ID      `json:"toAccountId"`
		Amount        float64 `json:"amount"`
		Date          Date    `json:"date"`
		Note          string  `json:"note,omitempty"`
	}

	Goal struct {
		ID           ID       `json:"id"`
		Name         string   `json:"name"`
		Target       float64  `json:"target"`
		Saved        float64  `json:"saved"`
		InitialSaved *float64 `json:"initialSaved,omitempty"`
	}

	ArchivedGoal struct {
		Goal
		CompletedAt time.Time `json:"completedAt"`
	}

	CapitalEntry struct {
		ID        ID      `json:"id"`
		Name      string  `json:"name"`
		Amount    float64 `json:"amount"`
		AccountID ID      `json:"accountId"`
	}

	Credit struct {
		ID       ID      `json:"id"`
		Name     string  `json:"name"`
		Amount   float64 `json:"amount"`
		Payments int     `json:"payments"`
		Start    string  `json:"start"` // YYYY-MM-DD
	}

	Asset struct {
		ID       ID       `json:"id"`
		Type     string   `json:"type"`
		Name     string   `json:"name"`
		Amount   float64  `json:"amount"`
		Currency Currency `json:"currency"`
		Trend    string   `json:"trend"`
	}

	Settings struct {
		Theme                 string   `json:"theme"`
		BaseCurrency          Currency `json:"baseCurrency"`
		LockEnabled           bool     `json:"lockEnabled"`
		ExpenseCategoryFilter string   `json:"expenseCategoryFilter"`
	}
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyCategory    = errors.New("empty category")
	ErrMissingAccount   = errors.New("missing account")
	ErrUnknownAccount   = errors.New("unknown account")
	ErrUnknownGoal      = errors.New("unknown goal")
	ErrSameAccount      = errors.New("transfer endpoints must differ")
	ErrCurrencyMismatch = errors.New("transfer accounts must share a currency")
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrInvalidTarget    = errors.New("invalid goal target")
	ErrInvalidPayments  = errors.New("invalid number of payments")
	ErrInvalidDate      = errors.New("invalid date")
	ErrLockedCategory   = errors.New("category is locked")
	ErrCategoryExists   = errors.New("category already exists")
)

// DefaultSettings mirrors what a fresh installation starts with.
func DefaultSettings() Settings {
	return Settings{
		Theme:                 "light",
		BaseCurrency:          UAH,
		ExpenseCategoryFilter: "all",
	}
}

func (c Currency) IsValid() bool {
	switch c {
	case UAH, USD, EUR:
		return true
	}
	return false
}

// Usable reports whether a baseline pointer holds a finite number.
func Usable(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func validAmount(v float64) error {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrInvalidAmount
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Currency.IsValid() {
		return ErrInvalidCurrency
	}
	if math.IsNaN(a.Balance) || math.IsInf(a.Balance, 0) {
		return ErrInvalidAmount
	}
	return nil
}

func (i Income) Validate() error {
	if err := validAmount(i.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(i.Category) == "" {
		return ErrEmptyCategory
	}
	if i.AccountID == 0 {
		return ErrMissingAccount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := validAmount(e.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if e.AccountID == 0 {
		return ErrMissingAccount
	}
	if e.Category == GoalCategory && e.GoalID == nil {
		return ErrUnknownGoal
	}
	return nil
}

// IsGoalContribution reports whether the expense credits a savings goal.
func (e Expense) IsGoalContribution() bool {
	return e.Category == GoalCategory && e.GoalID != nil
}

func (t Transfer) Validate() error {
	if t.FromAccountID == 0 || t.ToAccountID == 0 {
		return ErrMissingAccount
	}
	if t.FromAccountID == t.ToAccountID {
		return ErrSameAccount
	}
	return validAmount(t.Amount)
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.Target <= 0 || math.IsNaN(g.Target) || math.IsInf(g.Target, 0) {
		return ErrInvalidTarget
	}
	if g.Saved < 0 || math.IsNaN(g.Saved) || math.IsInf(g.Saved, 0) {
		return ErrInvalidAmount
	}
	return nil
}

// EffectiveTarget floors the target to 1 so percentages never divide by zero.
func (g Goal) EffectiveTarget() float64 {
	return math.Max(1, g.Target)
}

// Completed reports whether the goal has reached its target.
func (g Goal) Completed() bool {
	return g.Saved >= g.EffectiveTarget()
}

// Percent returns the rounded progress, capped at 100.
func (g Goal) Percent() int {
	p := math.Round(g.Saved / g.EffectiveTarget() * 100)
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return int(p)
}

func (c CapitalEntry) Validate() error {
	if c.AccountID == 0 {
		return ErrMissingAccount
	}
	if math.IsNaN(c.Amount) || math.IsInf(c.Amount, 0) {
		return ErrInvalidAmount
	}
	return nil
}

func (c Credit) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if err := validAmount(c.Amount); err != nil {
		return err
	}
	if c.Payments <= 0 {
		return ErrInvalidPayments
	}
	if _, err := ParseDay(c.Start); err != nil {
		return err
	}
	return nil
}

// MonthlyPayment is the flat instalment of the credit.
func (c Credit) MonthlyPayment() float64 {
	return c.Amount / float64(max(1, c.Payments))
}

func (a Asset) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if err := validAmount(a.Amount); err != nil {
		return err
	}
	if !a.Currency.IsValid() {
		return ErrInvalidCurrency
	}
	return nil
}

func (s Settings) Validate() error {
	if !s.BaseCurrency.IsValid() {
		return ErrInvalidCurrency
	}
	return nil
}
