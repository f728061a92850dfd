package recon

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// CategoryCode identifies a depreciation group (two significant digits).
type CategoryCode int

// CategoryMap holds one amount per category code for a single source of a unit.
type CategoryMap map[CategoryCode]decimal.Decimal

// Codes returns the map keys in ascending order.
func (m CategoryMap) Codes() []CategoryCode {
	codes := make([]CategoryCode, 0, len(m))
	for c := range m {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Total sums every amount in ascending code order.
func (m CategoryMap) Total() decimal.Decimal {
	total := decimal.Zero
	for _, c := range m.Codes() {
		total = total.Add(m[c])
	}
	return total
}

// CellKind tags the dynamic value a tabular reader produced for one cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumber
	CellText
)

// Cell is a single grid value: a number, a text, or nothing.
type Cell struct {
	Kind CellKind
	Num  float64
	Text string
}

func EmptyCell() Cell { return Cell{Kind: CellEmpty} }

func NumberCell(v float64) Cell {
	if math.IsNaN(v) {
		return EmptyCell()
	}
	return Cell{Kind: CellNumber, Num: v}
}

func TextCell(s string) Cell {
	if s == "" {
		return EmptyCell()
	}
	return Cell{Kind: CellText, Text: s}
}

// String renders the cell the way it appears when a row is joined for the
// header search. Empty cells render as "".
func (c Cell) String() string {
	switch c.Kind {
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellText:
		return c.Text
	default:
		return ""
	}
}

// Grid is a header-less two dimensional table; rows may have different lengths.
type Grid [][]Cell

// Divergence is a category whose report and ledger amounts differ by more
// than the tolerance.
type Divergence struct {
	Code       CategoryCode    `json:"group"`
	Report     decimal.Decimal `json:"report"`
	Ledger     decimal.Decimal `json:"ledger"`
	Difference decimal.Decimal `json:"difference"`
}

// UnitResult is the reconciliation outcome of one unit.
type UnitResult struct {
	UnitID          string          `json:"unit_id"`
	TotalReport     decimal.Decimal `json:"total_report"`
	TotalLedger     decimal.Decimal `json:"total_ledger"`
	TotalDifference decimal.Decimal `json:"total_difference"`
	Divergences     []Divergence    `json:"divergences"`
	Reconciled      bool            `json:"reconciled"`
}

// Status is the classification shown to users.
func (r UnitResult) Status() string {
	if r.Reconciled {
		return "Conciliado"
	}
	return fmt.Sprintf("%d divergência(s)", len(r.Divergences))
}
