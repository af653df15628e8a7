// Package money formats peso amounts and ratios the way the stadium's
// Colombian audience reads them: dots for thousands, commas for decimals.
package money

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	million = decimal.NewFromInt(1_000_000)
)

// Thousands renders 1234567 as "1.234.567".
func Thousands(n int64) string {
	return humanize.FormatInteger("#.###,", int(n))
}

// Pesos renders 45000 as "$45.000".
func Pesos(n int64) string {
	return "$" + Thousands(n)
}

// Millions renders revenue as "$1,25M" with the given number of decimals.
func Millions(n int64, places int32) string {
	s := decimal.NewFromInt(n).Div(million).StringFixed(places)
	return "$" + strings.Replace(s, ".", ",", 1) + "M"
}

// Percent is part/whole*100 rounded to places. A non-positive whole yields 0.
func Percent(part, whole int64, places int32) float64 {
	if whole <= 0 {
		return 0
	}
	return decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(whole)).Round(places).InexactFloat64()
}

// Ratio is num/den rounded to a whole number; 0 when den is not positive.
func Ratio(num, den int64) int64 {
	if den <= 0 {
		return 0
	}
	return decimal.NewFromInt(num).Div(decimal.NewFromInt(den)).Round(0).IntPart()
}
