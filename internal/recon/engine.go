package recon

import (
	"sort"

	"DepreciationRecon/internal/config"

	"github.com/shopspring/decimal"
)

// DefaultTolerance is the fixed 0.10 currency-unit threshold.
var DefaultTolerance = decimal.RequireFromString(config.Tolerance)

// Reconcile compares the report and ledger maps of one unit over the union of
// their codes in ascending order. A code missing on one side counts as zero
// there. A difference whose absolute value exceeds tolerance is a divergence.
func Reconcile(unitID string, report, ledger CategoryMap, tolerance decimal.Decimal) UnitResult {
	seen := make(map[CategoryCode]struct{}, len(report)+len(ledger))
	for c := range report {
		seen[c] = struct{}{}
	}
	for c := range ledger {
		seen[c] = struct{}{}
	}
	codes := make([]CategoryCode, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	res := UnitResult{
		UnitID:      unitID,
		TotalReport: report.Total(),
		TotalLedger: ledger.Total(),
		Divergences: []Divergence{},
	}
	for _, c := range codes {
		vr := amountOrZero(report, c)
		vl := amountOrZero(ledger, c)

		diff := vr.Sub(vl)
		if diff.Abs().GreaterThan(tolerance) {
			res.Divergences = append(res.Divergences, Divergence{
				Code:       c,
				Report:     vr,
				Ledger:     vl,
				Difference: diff,
			})
		}
	}
	res.TotalDifference = res.TotalReport.Sub(res.TotalLedger)
	res.Reconciled = len(res.Divergences) == 0
	return res
}

func amountOrZero(m CategoryMap, c CategoryCode) decimal.Decimal {
	if v, ok := m[c]; ok {
		return v
	}
	return decimal.Zero
}
