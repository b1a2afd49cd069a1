package billing

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount as dollars with grouped thousands and two
// decimals, e.g. "$1,234.50".
func FormatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	d = d.Round(2)
	whole := d.Truncate(0)
	cents := d.Sub(whole).StringFixed(2)
	return sign + "$" + humanize.Comma(whole.IntPart()) + strings.TrimPrefix(cents, "0")
}

// ParseMoney parses a user supplied amount, accepting an optional leading
// "$" and thousands separators.
func ParseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	return decimal.NewFromString(s)
}
