// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney formats a dollar amount with separators and cents.
// e.g., 1500 -> "$1,500.00", -12.5 -> "-$12.50"
func FormatMoney(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "n/a"
	}
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	cents := d.Sub(whole).Shift(2).IntPart()
	return sign + "$" + FormatNumber(whole.IntPart()) + "." + pad2(cents)
}

// FormatAmount prints an amount without trailing zeros, as the backend sent it.
// e.g., 1500 -> "1500", 412.5 -> "412.5"
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// FormatPercent2 rounds a 0-100 percentage half-up to two decimals.
// e.g., 16.666 -> "16.67%"
func FormatPercent2(pct float64) string {
	return roundFixed(pct, 2) + "%"
}

// FormatPercent1 rounds a 0-100 percentage to one decimal.
func FormatPercent1(pct float64) string {
	return roundFixed(pct, 1) + "%"
}

// ProgressLabel is the caption shown next to a category bar.
// e.g., "1500 USD (50.00%)"
func ProgressLabel(amount, pct float64) string {
	return FormatAmount(amount) + " USD (" + FormatPercent2(pct) + ")"
}

// SliceLabel is the caption for one pie wedge.
// e.g., "Housing: 50.0% (1500.00 USD)"
func SliceLabel(name string, pct, amount float64) string {
	return name + ": " + FormatPercent1(pct) + " (" + roundFixed(amount, 2) + " USD)"
}

// ChartTitle names the breakdown chart for a city.
func ChartTitle(city string) string {
	city = strings.TrimSpace(city)
	if city == "" {
		city = "the selected city"
	}
	return "Budget Breakdown for " + city
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

func roundFixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
