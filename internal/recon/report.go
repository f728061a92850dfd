package recon

import (
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"
)

// Whitespace classes include Unicode separators such as the no-break space
// that PDF text extraction often yields.
var (
	// "4 - EQUIPAMENTOS" at the start of a line opens a category block.
	categoryHeaderRe = regexp.MustCompile(`(?m)^[\s\p{Z}]*(\d+)[\s\p{Z}]*-[\s\p{Z}]*[A-Z]`)

	// "(*) SALDO ... ATUAL ... 1.234,56" carries the block balance.
	currentBalanceRe = regexp.MustCompile(`\(\*\)[\s\p{Z}]*SALDO[\s\S]*?ATUAL[\s\S]*?(\d{1,3}(?:\.\d{3})*,\d{2})`)
)

// DuplicateCategoryPolicy decides the amount kept when a report repeats a
// category header.
type DuplicateCategoryPolicy func(earlier, later decimal.Decimal) decimal.Decimal

// LastMatchWins keeps the amount of the later block.
func LastMatchWins(_, later decimal.Decimal) decimal.Decimal { return later }

// ReportDuplicatePolicy is applied by ExtractReportCategories.
var ReportDuplicatePolicy DuplicateCategoryPolicy = LastMatchWins

// ExtractReportCategories splits the report text into category blocks and
// reads the current balance of each. A block without a balance line counts
// as zero. The result holds exactly the codes that opened a block.
func ExtractReportCategories(text string) CategoryMap {
	out := make(CategoryMap)
	matches := categoryHeaderRe.FindAllStringSubmatchIndex(text, -1)
	for i, m := range matches {
		code, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		amount := blockBalance(text[m[0]:end])

		if earlier, seen := out[CategoryCode(code)]; seen {
			amount = ReportDuplicatePolicy(earlier, amount)
		}
		out[CategoryCode(code)] = amount
	}
	return out
}

func blockBalance(block string) decimal.Decimal {
	sm := currentBalanceRe.FindStringSubmatch(block)
	if sm == nil {
		return decimal.Zero
	}
	return ParseReportAmount(sm[1])
}
