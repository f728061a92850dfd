package render

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBRL renders an amount as "1.234,56" (two decimals, "." thousands).
func FormatBRL(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

// FormatMoney prefixes the currency marker.
func FormatMoney(d decimal.Decimal) string {
	return "R$ " + FormatBRL(d)
}
