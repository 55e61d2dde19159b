// Package currency converts amounts between the ledger currencies using
// fixed rates expressed relative to the base unit (UAH).
package currency

import "fintrack/internal/core"

// Rates maps a currency code to how many units of it equal one base unit.
type Rates map[core.Currency]float64

// DefaultRates are fixed display rates, not live quotes.
func DefaultRates() Rates {
	return Rates{
		core.UAH: 1,
		core.USD: 0.027,
		core.EUR: 0.025,
	}
}

// Converter is safe for concurrent use once built.
type Converter struct {
	rates Rates
}

func NewConverter(rates Rates) *Converter {
	copied := make(Rates, len(rates))
	for k, v := range rates {
		copied[k] = v
	}
	return &Converter{rates: copied}
}

// Rate returns the rate for c. Unknown or non-positive rates count as 1.
func (c *Converter) Rate(code core.Currency) float64 {
	if r, ok := c.rates[code]; ok && r > 0 {
		return r
	}
	return 1
}

// Convert computes amount / rate[from] * rate[to].
func (c *Converter) Convert(amount float64, from, to core.Currency) float64 {
	if from == to {
		return amount
	}
	return amount / c.Rate(from) * c.Rate(to)
}

var defaultConverter = NewConverter(DefaultRates())

// Convert uses DefaultRates.
func Convert(amount float64, from, to core.Currency) float64 {
	return defaultConverter.Convert(amount, from, to)
}
