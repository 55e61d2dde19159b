package currency

import (
	"math"
	"testing"

	"fintrack/internal/core"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		from, to core.Currency
		want     float64
	}{
		{"usd to base", 100, core.USD, core.UAH, 100 / 0.027},
		{"base to eur", 1000, core.UAH, core.EUR, 25},
		{"usd to eur", 27, core.USD, core.EUR, 25},
		{"same currency", 42, core.EUR, core.EUR, 42},
		{"unknown source treated as base", 10, "GBP", core.UAH, 10},
		{"unknown target treated as base", 10, core.UAH, "PLN", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Convert(tt.amount, tt.from, tt.to)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Convert() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConvertRoundsToExpectedDisplay(t *testing.T) {
	got := Convert(100, core.USD, core.UAH)
	if core.FormatAmount(got) != "3703.70" {
		t.Fatalf("Convert(100, USD, UAH) = %v", got)
	}
}

func TestConverterCopiesRates(t *testing.T) {
	rates := Rates{core.UAH: 1, core.USD: 0.5}
	c := NewConverter(rates)
	rates[core.USD] = 0.25
	if got := c.Convert(1, core.USD, core.UAH); got != 2 {
		t.Fatalf("converter should not observe caller mutations, got %v", got)
	}
	if got := NewConverter(Rates{core.USD: 0}).Rate(core.USD); got != 1 {
		t.Fatalf("zero rate should fall back to 1, got %v", got)
	}
}
