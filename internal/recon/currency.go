package recon

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseReportAmount converts a report amount such as "1.234,56". Empty or
// malformed text yields zero.
func ParseReportAmount(text string) decimal.Decimal {
	if text == "" {
		return decimal.Zero
	}
	clean := strings.ReplaceAll(text, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")
	d, err := decimal.NewFromString(strings.TrimSpace(clean))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseLedgerAmount converts a ledger cell. Numbers pass through; text may
// carry an "R$" marker and either the "1.234,56" or the "1234.56" convention.
// Missing or malformed values yield zero.
func ParseLedgerAmount(c Cell) decimal.Decimal {
	switch c.Kind {
	case CellNumber:
		if math.IsInf(c.Num, 0) || math.IsNaN(c.Num) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(c.Num)
	case CellText:
		s := strings.TrimSpace(c.Text)
		s = strings.ReplaceAll(s, "R$", "")
		s = strings.ReplaceAll(s, " ", "")
		if strings.Contains(s, ",") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}
