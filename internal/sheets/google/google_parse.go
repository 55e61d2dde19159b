package google

import (
	"fmt"
	"strconv"
	"strings"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

// parseBalances converts a values matrix (as returned by the Sheets API)
// back into balance rows. The first row must be the snapshot header; blank
// rows are skipped.
func parseBalances(values [][]any) ([]ports.BalanceRow, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := toStrings(values[0])
	if indexOf(headers, "Account") != 1 || indexOf(headers, "Base balance") != 6 {
		return nil, fmt.Errorf("unexpected snapshot header: got headers=%v", headers)
	}

	var out []ports.BalanceRow
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if strings.Join(row, "") == "" {
			continue
		}
		id, err := core.ParseID(safeGet(row, 0))
		if err != nil {
			return nil, fmt.Errorf("row %d: account id: %w", i+1, err)
		}
		balance, ok := parseNumber(safeGet(row, 4))
		if !ok {
			return nil, fmt.Errorf("row %d: invalid balance %q", i+1, safeGet(row, 4))
		}
		baseBalance, ok := parseNumber(safeGet(row, 6))
		if !ok {
			return nil, fmt.Errorf("row %d: invalid base balance %q", i+1, safeGet(row, 6))
		}
		out = append(out, ports.BalanceRow{
			AccountID:    id,
			Name:         safeGet(row, 1),
			Type:         safeGet(row, 2),
			Currency:     core.Currency(safeGet(row, 3)),
			Balance:      balance,
			BaseCurrency: core.Currency(safeGet(row, 5)),
			BaseBalance:  baseBalance,
		})
	}
	return out, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// parseNumber accepts signed values with either decimal separator.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
