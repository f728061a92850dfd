package ingest

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

var ErrNoPages = errors.New("document has no pages")

// PageTextExtractor turns a paginated document into page texts in order.
type PageTextExtractor interface {
	PageTexts(src Source) ([]string, error)
}

// PDFTextExtractor reads PDF text page by page, rebuilding lines from the
// glyph positions of each page.
type PDFTextExtractor struct {
	// GapRatio is the horizontal gap, relative to font size, that separates
	// two glyph runs with a space.
	GapRatio float64
}

func NewPDFTextExtractor() *PDFTextExtractor {
	return &PDFTextExtractor{GapRatio: 0.15}
}

func (e *PDFTextExtractor) PageTexts(src Source) (pages []string, err error) {
	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("failed to read pdf %s: %v", src.Name, r)
		}
	}()

	rd, err := pdf.NewReader(src.Open(), int64(len(src.Data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", src.Name, err)
	}
	n := rd.NumPage()
	if n == 0 {
		return nil, ErrNoPages
	}

	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := rd.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, e.pageText(p.Content().Text))
	}
	return pages, nil
}

// pageText groups glyphs into lines top to bottom and orders each line left
// to right. Glyphs drawn at the same X keep their content stream order.
func (e *PDFTextExtractor) pageText(glyphs []pdf.Text) string {
	drawn := make([]pdf.Text, 0, len(glyphs))
	for _, g := range glyphs {
		if g.S == "" || g.S == "\n" {
			continue
		}
		drawn = append(drawn, g)
	}
	sort.SliceStable(drawn, func(i, j int) bool { return drawn[i].Y > drawn[j].Y })

	var lines []string
	for start := 0; start < len(drawn); {
		end := start + 1
		for end < len(drawn) && sameLine(drawn[start], drawn[end]) {
			end++
		}
		lines = append(lines, e.joinLine(drawn[start:end]))
		start = end
	}
	return strings.Join(lines, "\n")
}

func sameLine(first, g pdf.Text) bool {
	tol := math.Max(first.FontSize*0.4, 1)
	return math.Abs(first.Y-g.Y) <= tol
}

func (e *PDFTextExtractor) joinLine(row []pdf.Text) string {
	sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
	var b strings.Builder
	for i, g := range row {
		if i > 0 {
			prev := row[i-1]
			gap := g.X - (prev.X + prev.W)
			if gap > g.FontSize*e.GapRatio && prev.S != " " && g.S != " " {
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
	}
	return strings.TrimRightFunc(b.String(), unicode.IsSpace)
}

// DocumentText concatenates page texts with a newline after each page, the
// layout the report segmenter expects.
func DocumentText(pages []string) string {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	return b.String()
}
