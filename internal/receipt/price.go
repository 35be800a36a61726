package receipt

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxExponent bounds the decimal exponent of a price. Formatting a value
// like 1e100000000 to two places would expand every digit.
const maxExponent = 20

// parsePrice parses a price as a non-negative decimal.
// Surrounding whitespace is ignored. The whole value must be a number, so
// "6.5abc" fails rather than reading as 6.5.
func parsePrice(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, false
	}
	if d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// formatPrice renders an amount with exactly two fractional digits
func formatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Total sums the parseable prices of items. Empty or unparseable prices count as zero.
func Total(items []Item) string {
	sum := decimal.Zero
	for _, item := range items {
		if d, ok := parsePrice(item.Price); ok {
			sum = sum.Add(d)
		}
	}
	return formatPrice(sum)
}

// FormatAmount formats a numeric amount (as produced by a scanner) as a two-decimal price.
// Negative amounts are returned as an empty price so the user re-enters them.
func FormatAmount(amount float64) string {
	d := decimal.NewFromFloat(amount)
	if d.IsNegative() {
		return ""
	}
	return formatPrice(d)
}
