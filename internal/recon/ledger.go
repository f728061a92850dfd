package recon

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"

	"DepreciationRecon/internal/config"
)

// ErrHeaderNotFound means no row of the ledger grid contains the header marker.
var ErrHeaderNotFound = errors.New("ledger header row not found")

// FindLedgerHeader returns the index of the first row whose joined cell text
// contains the header marker.
func FindLedgerHeader(grid Grid) (int, error) {
	for i, row := range grid {
		parts := make([]string, len(row))
		for j, c := range row {
			parts[j] = c.String()
		}
		if strings.Contains(strings.Join(parts, " "), config.LedgerHeaderMarker) {
			return i, nil
		}
	}
	return -1, ErrHeaderNotFound
}

// ExtractLedgerCategories sums the absolute balance of every data row by
// category code. The nature-of-expense column is the first column and the
// balance column the last; rows up to and including the header are not data.
func ExtractLedgerCategories(grid Grid) (CategoryMap, error) {
	header, err := FindLedgerHeader(grid)
	if err != nil {
		return nil, err
	}
	data := grid[header+1:]

	width := len(grid[header])
	for _, row := range data {
		if len(row) > width {
			width = len(row)
		}
	}
	natureCol := columnIndex(config.NatureColumn, width)
	balanceCol := columnIndex(config.BalanceColumn, width)

	out := make(CategoryMap)
	for _, row := range data {
		code, ok := CategoryFromNature(cellAt(row, natureCol))
		if !ok {
			continue
		}
		amount := ParseLedgerAmount(cellAt(row, balanceCol)).Abs()
		out[code] = out[code].Add(amount)
	}
	return out, nil
}

// CategoryFromNature derives the category code from a nature-of-expense
// value: digits only, at least MinNatureDigits of them, last CategoryDigits
// taken as the code. Numeric cells are read as integers first so "339142.0"
// does not gain a trailing zero.
func CategoryFromNature(c Cell) (CategoryCode, bool) {
	var raw string
	switch c.Kind {
	case CellNumber:
		if math.IsInf(c.Num, 0) || math.IsNaN(c.Num) {
			return 0, false
		}
		raw = strconv.FormatInt(int64(c.Num), 10)
	case CellText:
		raw = strings.TrimSpace(c.Text)
	default:
		return 0, false
	}
	digits := onlyDigits(raw)
	if len(digits) < config.MinNatureDigits {
		return 0, false
	}
	code, err := strconv.Atoi(digits[len(digits)-config.CategoryDigits:])
	if err != nil {
		return 0, false
	}
	return CategoryCode(code), true
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func columnIndex(pos, width int) int {
	if pos < 0 {
		return width + pos
	}
	return pos
}

func cellAt(row []Cell, i int) Cell {
	if i < 0 || i >= len(row) {
		return EmptyCell()
	}
	return row[i]
}
