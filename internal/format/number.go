// Package format renders amounts for display. It never feeds values back into storage.
package format

import (
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DisplayCeiling is the largest value FormatNumber will render
const DisplayCeiling = 999_999_999_999

var printer = message.NewPrinter(language.Japanese)

// FormatNumber renders v as a non-negative integer with thousands separators.
// NaN, infinite and negative inputs degrade to "0"; values above DisplayCeiling are clamped.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return "0"
	}
	if v > DisplayCeiling {
		v = DisplayCeiling
	}
	return printer.Sprintf("%d", int64(math.Floor(v)))
}

// FormatDecimal is FormatNumber for decimal amounts
func FormatDecimal(d decimal.Decimal) string {
	if d.IsNegative() {
		return "0"
	}
	if d.GreaterThan(decimal.NewFromInt(DisplayCeiling)) {
		d = decimal.NewFromInt(DisplayCeiling)
	}
	return printer.Sprintf("%d", d.Floor().IntPart())
}

// FormatSigned renders a difference with an explicit sign ("+1,000" / "-1,000").
// Unlike FormatNumber it keeps negative values, since deltas are meant to show direction.
func FormatSigned(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + FormatDecimal(d.Neg())
	}
	return "+" + FormatDecimal(d)
}

// Yen renders a whole-yen amount with the currency symbol, e.g. "¥1,000,000"
func Yen(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + Yen(d.Neg())
	}
	if d.GreaterThan(decimal.NewFromInt(DisplayCeiling)) {
		d = decimal.NewFromInt(DisplayCeiling)
	}
	return money.New(d.Round(0).IntPart(), money.JPY).Display()
}
