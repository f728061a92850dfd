package render

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"DepreciationRecon/internal/recon"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const (
	reportTitle   = "Relatório de Conciliação - Depreciação Acumulada"
	pageBreakAtMM = 240
)

type rgb struct{ r, g, b int }

var (
	black     = rgb{0, 0, 0}
	red       = rgb{200, 0, 0}
	green     = rgb{0, 100, 0}
	unitBar   = rgb{230, 230, 230}
	okFill    = rgb{220, 255, 220}
	errorFill = rgb{255, 220, 220}
)

// PDFOptions tune the consolidated document.
type PDFOptions struct {
	Tolerance decimal.Decimal
	Author    string
}

// PDF writes the consolidated reconciliation document for the given units,
// in the order received. Formatting state lives in this call only.
func PDF(w io.Writer, units []recon.UnitResult, opts PDFOptions) error {
	if opts.Tolerance.IsZero() {
		opts.Tolerance = recon.DefaultTolerance
	}

	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetTitle(reportTitle, true)
	if opts.Author != "" {
		doc.SetAuthor(opts.Author, true)
	}
	doc.SetHeaderFunc(func() {
		doc.SetFont("Arial", "B", 10)
		doc.CellFormat(0, 10, tr(reportTitle), "", 1, "C", false, 0, "")
		doc.Line(10, 20, 200, 20)
		doc.Ln(10)
	})
	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont("Arial", "I", 8)
		doc.CellFormat(0, 10, tr(fmt.Sprintf("Página %d", doc.PageNo())), "", 0, "C", false, 0, "")
	})
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()

	for _, u := range units {
		writeUnit(doc, tr, u, opts.Tolerance)
	}
	return doc.Output(w)
}

// PDFBytes is PDF into a buffer.
func PDFBytes(units []recon.UnitResult, opts PDFOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := PDF(&buf, units, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeUnit(doc *fpdf.Fpdf, tr func(string) string, u recon.UnitResult, tolerance decimal.Decimal) {
	setText := func(c rgb) { doc.SetTextColor(c.r, c.g, c.b) }
	setFill := func(c rgb) { doc.SetFillColor(c.r, c.g, c.b) }

	if doc.GetY() > pageBreakAtMM {
		doc.AddPage()
	}

	doc.SetFont("Arial", "B", 12)
	setFill(unitBar)
	doc.CellFormat(0, 8, tr("Unidade Gestora: "+u.UnitID), "", 1, "L", true, 0, "")
	doc.Ln(2)

	doc.SetFont("Arial", "B", 9)
	doc.CellFormat(60, 6, tr("Total Relatório"), "1", 0, "C", false, 0, "")
	doc.CellFormat(60, 6, "Total SIAFI", "1", 0, "C", false, 0, "")
	doc.CellFormat(60, 6, tr("Diferença"), "1", 1, "C", false, 0, "")

	doc.SetFont("Arial", "", 9)
	doc.CellFormat(60, 6, FormatMoney(u.TotalReport), "1", 0, "C", false, 0, "")
	doc.CellFormat(60, 6, FormatMoney(u.TotalLedger), "1", 0, "C", false, 0, "")
	if u.TotalDifference.Abs().GreaterThan(tolerance) {
		setText(red)
	} else {
		setText(green)
	}
	doc.CellFormat(60, 6, FormatMoney(u.TotalDifference), "1", 1, "C", false, 0, "")
	setText(black)
	doc.Ln(4)

	if u.Reconciled {
		setFill(okFill)
		doc.SetFont("Arial", "B", 9)
		doc.CellFormat(0, 8, "CONCILIADO", "1", 1, "C", true, 0, "")
	} else {
		setFill(errorFill)
		doc.SetFont("Arial", "B", 9)
		doc.CellFormat(0, 8, tr("DIVERGÊNCIAS ENCONTRADAS:"), "1", 1, "L", true, 0, "")

		doc.SetFont("Arial", "B", 8)
		doc.CellFormat(20, 6, "Grupo", "1", 0, "C", false, 0, "")
		doc.CellFormat(45, 6, tr("Relatório"), "1", 0, "C", false, 0, "")
		doc.CellFormat(45, 6, "SIAFI", "1", 0, "C", false, 0, "")
		doc.CellFormat(40, 6, tr("Diferença"), "1", 1, "C", false, 0, "")

		doc.SetFont("Arial", "", 8)
		for _, d := range u.Divergences {
			doc.CellFormat(20, 6, strconv.Itoa(int(d.Code)), "1", 0, "C", false, 0, "")
			doc.CellFormat(45, 6, FormatBRL(d.Report), "1", 0, "R", false, 0, "")
			doc.CellFormat(45, 6, FormatBRL(d.Ledger), "1", 0, "R", false, 0, "")
			setText(red)
			doc.CellFormat(40, 6, FormatBRL(d.Difference), "1", 1, "R", false, 0, "")
			setText(black)
		}
	}

	doc.Ln(8)
	doc.CellFormat(0, 0, "", "B", 1, "C", false, 0, "")
	doc.Ln(8)
}
