package render

import (
	"bytes"
	"fmt"

	"DepreciationRecon/internal/recon"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet    = "Resumo"
	divergenceSheet = "Divergencias"
	unmatchedSheet  = "Sem Par"
)

// Workbook builds an xlsx with one summary row per unit, one row per
// divergence and, when given, the unit ids that had no counterpart.
func Workbook(units []recon.UnitResult, unmatched []string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetDocProps(&excelize.DocProperties{
		Title:   reportTitle,
		Creator: "DepreciationRecon",
	})
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(divergenceSheet); err != nil {
		return nil, err
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := writeRows(f, summarySheet, []interface{}{"Unidade", "Total Relatório", "Total SIAFI", "Diferença", "Status"}, bold); err != nil {
		return nil, err
	}
	for i, u := range units {
		row := []interface{}{u.UnitID, amount(u.TotalReport), amount(u.TotalLedger), amount(u.TotalDifference), u.Status()}
		if err := setRow(f, summarySheet, i+2, row); err != nil {
			return nil, err
		}
	}
	if len(units) > 0 {
		if err := f.SetCellStyle(summarySheet, "B2", fmt.Sprintf("D%d", len(units)+1), money); err != nil {
			return nil, err
		}
	}

	if err := writeRows(f, divergenceSheet, []interface{}{"Unidade", "Grupo", "Relatório", "SIAFI", "Diferença"}, bold); err != nil {
		return nil, err
	}
	next := 2
	for _, u := range units {
		for _, d := range u.Divergences {
			row := []interface{}{u.UnitID, int(d.Code), amount(d.Report), amount(d.Ledger), amount(d.Difference)}
			if err := setRow(f, divergenceSheet, next, row); err != nil {
				return nil, err
			}
			next++
		}
	}
	if next > 2 {
		if err := f.SetCellStyle(divergenceSheet, "C2", fmt.Sprintf("E%d", next-1), money); err != nil {
			return nil, err
		}
	}

	if len(unmatched) > 0 {
		if _, err := f.NewSheet(unmatchedSheet); err != nil {
			return nil, err
		}
		if err := writeRows(f, unmatchedSheet, []interface{}{"Unidade"}, bold); err != nil {
			return nil, err
		}
		for i, id := range unmatched {
			if err := setRow(f, unmatchedSheet, i+2, []interface{}{id}); err != nil {
				return nil, err
			}
		}
	}

	f.SetActiveSheet(0)
	return f.WriteToBuffer()
}

func writeRows(f *excelize.File, sheet string, header []interface{}, style int) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func amount(d decimal.Decimal) float64 {
	v, _ := d.Round(2).Float64()
	return v
}
