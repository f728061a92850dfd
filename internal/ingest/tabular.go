package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"DepreciationRecon/internal/config"
	"DepreciationRecon/internal/logger"
	"DepreciationRecon/internal/recon"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var ErrUnsupportedTable = errors.New("failed to parse excel, xls, or csv")

const xlsFormulaPlaceholder = "FormulaCol"

// TabularReader turns spreadsheet or delimited bytes into a header-less grid.
type TabularReader interface {
	ReadGrid(src Source) (recon.Grid, error)
}

// GridReader tries the convention implied by the file extension first and
// falls back to the others, rewinding the source before every attempt.
type GridReader struct {
	Comma rune
	// Charset of delimited files; ledger exports are Latin-1.
	Charset *charmap.Charmap
}

func NewGridReader(comma rune) *GridReader {
	if comma == 0 {
		comma = config.DefaultCSVDelimiter
	}
	return &GridReader{Comma: comma, Charset: charmap.ISO8859_1}
}

type gridAttempt struct {
	kind string
	read func(io.ReadSeeker) (recon.Grid, error)
}

func (g *GridReader) ReadGrid(src Source) (recon.Grid, error) {
	delimited := gridAttempt{"csv", g.readDelimited}
	workbook := gridAttempt{"xlsx", g.readXLSX}
	legacy := gridAttempt{"xls", g.readXLS}

	var order []gridAttempt
	switch src.Ext() {
	case ".csv":
		order = []gridAttempt{delimited, workbook, legacy}
	case ".xls":
		order = []gridAttempt{legacy, workbook, delimited}
	default:
		order = []gridAttempt{workbook, legacy, delimited}
	}

	rd := src.Open()
	var errs []error
	for _, a := range order {
		if _, err := rd.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		grid, err := a.read(rd)
		if err == nil && len(grid) > 0 {
			return grid, nil
		}
		if err == nil {
			err = errors.New("no rows")
		}
		errs = append(errs, fmt.Errorf("%s: %w", a.kind, err))
	}
	return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedTable, src.Name, errors.Join(errs...))
}

func (g *GridReader) readDelimited(r io.ReadSeeker) (recon.Grid, error) {
	head := make([]byte, 512)
	n, _ := io.ReadFull(r, head)
	if bytes.IndexByte(head[:n], 0) >= 0 {
		return nil, errors.New("binary content")
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	var in io.Reader = r
	if g.Charset != nil {
		in = transform.NewReader(r, g.Charset.NewDecoder())
	}
	cr := csv.NewReader(in)
	cr.Comma = g.Comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	grid := make(recon.Grid, len(records))
	for i, rec := range records {
		row := make([]recon.Cell, len(rec))
		for j, v := range rec {
			row[j] = inferCell(v)
		}
		grid[i] = row
	}
	return grid, nil
}

func (g *GridReader) readXLSX(r io.ReadSeeker) (recon.Grid, error) {
	xl, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer xl.Close()

	sheets := xl.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	sheet := sheets[0]
	rows, err := xl.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	grid := make(recon.Grid, len(rows))
	for i, raw := range rows {
		row := make([]recon.Cell, len(raw))
		for j, v := range raw {
			ref, _ := excelize.CoordinatesToCellName(j+1, i+1)
			kind, _ := xl.GetCellType(sheet, ref)
			row[j] = workbookCell(kind, v)
		}
		grid[i] = row
	}
	return grid, nil
}

func (g *GridReader) readXLS(r io.ReadSeeker) (grid recon.Grid, err error) {
	// The xls decoder panics on truncated compound documents.
	defer func() {
		if p := recover(); p != nil {
			grid, err = nil, fmt.Errorf("malformed xls: %v", p)
		}
	}()

	book, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return nil, err
	}
	if book.NumSheets() == 0 {
		return nil, errors.New("no sheets found in xls file")
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("could not get first sheet")
	}

	lossy := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]recon.Cell, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cell, ok := xlsCell(row.Col(j))
			if !ok {
				lossy++
			}
			cells[j] = cell
		}
		grid = append(grid, cells)
	}
	if lossy > 0 {
		logger.Auditf("[INGEST] %d xls cell(s) hold formulas or custom-formatted numbers and were read as empty", lossy)
	}
	return grid, nil
}

// xlsCell maps one decoded xls value. The decoder renders formula cells as a
// placeholder and numbers under user-defined formats as RFC3339 timestamps;
// neither carries the stored number, so both come back empty and not ok.
func xlsCell(v string) (recon.Cell, bool) {
	s := strings.TrimSpace(v)
	if s == xlsFormulaPlaceholder {
		return recon.EmptyCell(), false
	}
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return recon.EmptyCell(), false
	}
	return inferCell(s), true
}

// workbookCell keeps number-typed cells numeric; shared and inline strings
// stay text even when they look like numbers.
func workbookCell(kind excelize.CellType, v string) recon.Cell {
	switch kind {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		return inferCell(v)
	default:
		return recon.TextCell(strings.TrimSpace(v))
	}
}

// inferCell reads plain numeric text ("1234.5", "-3") as a number, blank or
// "NaN" as empty, anything else as text.
func inferCell(v string) recon.Cell {
	s := strings.TrimSpace(v)
	if s == "" {
		return recon.EmptyCell()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(s, "_xXpP") {
		if math.IsInf(f, 0) {
			return recon.TextCell(s)
		}
		return recon.NumberCell(f)
	}
	return recon.TextCell(s)
}
