package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// DashboardTotals is the headline block of the dashboard.
type DashboardTotals struct {
	Currency      Currency `json:"currency"`
	TotalAccounts float64  `json:"totalAccounts"`
	Income        float64  `json:"income"`
	Expense       float64  `json:"expense"`
	Net           float64  `json:"net"`
}

// Breakdown groups expenses by category and by "category / subcategory".
type Breakdown struct {
	ByCategory       []CategoryAmount `json:"byCategory"`
	TopSubcategories []CategoryAmount `json:"topSubcategories"`
}

// Dashboard is a compact summary for the selected account and period.
type Dashboard struct {
	DashboardTotals
	Breakdown
}

// Forecast projects outflows for a target month.
type Forecast struct {
	Month              string           `json:"month"` // YYYY-MM
	Currency           Currency         `json:"currency"`
	AvgMonthlyExpenses float64          `json:"avgMonthlyExpenses"`
	CreditPayments     float64          `json:"creditPayments"`
	Credits            []CategoryAmount `json:"credits"`
	ProjectedOutflow   float64          `json:"projectedOutflow"`
}
