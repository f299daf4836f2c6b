// Package format renders money and percentages the same way on every device. Formatting is
// idempotent: feeding an already formatted value back in yields the identical string.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultCurrencySymbol is used when a Formatter is built without one.
const DefaultCurrencySymbol = "₹"

// Formatter renders amounts with a fixed symbol and Indian digit grouping (12,34,567.00).
type Formatter struct {
	symbol string
}

// New builds a Formatter for the given symbol.
func New(symbol string) Formatter {
	if strings.TrimSpace(symbol) == "" {
		symbol = DefaultCurrencySymbol
	}
	return Formatter{symbol: symbol}
}

// Currency formats a numeric amount. NaN and infinities render as zero.
func (f Formatter) Currency(amount float64) string {
	if f.symbol == "" {
		f.symbol = DefaultCurrencySymbol
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	amount = round2(amount)
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	fixed := strconv.FormatFloat(amount, 'f', 2, 64)
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + f.symbol + groupIndian(whole) + "." + frac
}

// CurrencyString formats a raw or previously formatted amount. Unparseable input is returned trimmed.
func (f Formatter) CurrencyString(raw string) string {
	v, err := f.ParseAmount(raw)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return f.Currency(v)
}

// ParseAmount strips symbols, grouping and whitespace before parsing.
func (f Formatter) ParseAmount(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	if f.symbol != "" {
		cleaned = strings.ReplaceAll(cleaned, f.symbol, "")
	}
	for _, token := range []string{DefaultCurrencySymbol, "INR", "Rs.", "Rs", ",", " "} {
		cleaned = strings.ReplaceAll(cleaned, token, "")
	}
	if cleaned == "" {
		return 0, fmt.Errorf("amount is empty")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return v, nil
}

// Percent formats a ratio already expressed in percent units, e.g. 85.5 -> "85.50%".
func Percent(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	return strconv.FormatFloat(round2(value), 'f', 2, 64) + "%"
}

// PercentString formats raw or previously formatted percentages.
func PercentString(raw string) string {
	cleaned := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return Percent(v)
}

// Ratio returns part/whole in percent, or zero when whole is zero.
func Ratio(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return round2(part / whole * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// groupIndian inserts separators after the last three digits and then every two digits.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
