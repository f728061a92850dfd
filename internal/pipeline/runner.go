package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"DepreciationRecon/internal/ingest"
	"DepreciationRecon/internal/logger"
	"DepreciationRecon/internal/recon"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingSources = errors.New("at least one report and one ledger file are required")
	ErrNoUnits        = errors.New("no file name starts with a unit code")
)

// ProgressFunc is called after every unit id, paired or not.
type ProgressFunc func(done, total int, unitID string)

// Unmatched is a unit that had only one side uploaded.
type Unmatched struct {
	UnitID    string `json:"unit_id"`
	HasReport bool   `json:"has_report"`
	HasLedger bool   `json:"has_ledger"`
}

// SummaryRow is the one-line view of a reconciled unit.
type SummaryRow struct {
	UnitID          string          `json:"unit_id"`
	Status          string          `json:"status"`
	TotalDifference decimal.Decimal `json:"total_difference"`
}

// Batch is the outcome of one reconciliation run.
type Batch struct {
	Units     []recon.UnitResult `json:"units"`
	Unmatched []Unmatched        `json:"unmatched"`
	Ignored   []string           `json:"ignored"`
}

func (b *Batch) Summary() []SummaryRow {
	rows := make([]SummaryRow, 0, len(b.Units))
	for _, u := range b.Units {
		rows = append(rows, SummaryRow{UnitID: u.UnitID, Status: u.Status(), TotalDifference: u.TotalDifference})
	}
	return rows
}

// UnmatchedIDs lists the unit ids that had a single side.
func (b *Batch) UnmatchedIDs() []string {
	ids := make([]string, 0, len(b.Unmatched))
	for _, u := range b.Unmatched {
		ids = append(ids, u.UnitID)
	}
	return ids
}

// Runner reconciles a batch of report and ledger sources.
type Runner struct {
	Text      ingest.PageTextExtractor
	Tables    ingest.TabularReader
	Tolerance decimal.Decimal
}

func NewRunner(text ingest.PageTextExtractor, tables ingest.TabularReader) *Runner {
	return &Runner{Text: text, Tables: tables, Tolerance: recon.DefaultTolerance}
}

// Run pairs the sources by unit id and reconciles each pairable unit in
// ascending id order, one at a time. Cancellation is honoured between units;
// the units finished so far are returned with the context error.
func (r *Runner) Run(ctx context.Context, reports, ledgers []ingest.Source, progress ProgressFunc) (*Batch, error) {
	if len(reports) == 0 || len(ledgers) == 0 {
		return nil, ErrMissingSources
	}

	batch := &Batch{Units: []recon.UnitResult{}, Unmatched: []Unmatched{}, Ignored: []string{}}
	for _, s := range append(append([]ingest.Source{}, reports...), ledgers...) {
		if _, ok := recon.UnitID(s.Name); !ok {
			batch.Ignored = append(batch.Ignored, s.Name)
		}
	}

	units := recon.PairUnits(reports, ledgers, ingest.Source.SourceName)
	if len(units) == 0 {
		return nil, ErrNoUnits
	}

	for i, u := range units {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		if u.Pairable() {
			logger.Auditf("[PIPELINE] Processing unit %s (%s, %s)", u.ID, u.Report.Name, u.Ledger.Name)
			batch.Units = append(batch.Units, r.reconcileUnit(u.ID, *u.Report, *u.Ledger))
		} else {
			batch.Unmatched = append(batch.Unmatched, Unmatched{
				UnitID:    u.ID,
				HasReport: u.Report != nil,
				HasLedger: u.Ledger != nil,
			})
		}
		if progress != nil {
			progress(i+1, len(units), u.ID)
		}
	}
	return batch, nil
}

func (r *Runner) reconcileUnit(id string, report, ledger ingest.Source) recon.UnitResult {
	tolerance := r.Tolerance
	if tolerance.IsZero() {
		tolerance = recon.DefaultTolerance
	}
	res := recon.Reconcile(id, r.ReportCategories(report), r.LedgerCategories(ledger), tolerance)
	logger.Auditf("[PIPELINE] Unit %s: report=%s ledger=%s diff=%s status=%s",
		id, res.TotalReport.StringFixed(2), res.TotalLedger.StringFixed(2), res.TotalDifference.StringFixed(2), res.Status())
	return res
}

// ReportCategories extracts the report side; an unreadable document yields
// an empty map.
func (r *Runner) ReportCategories(src ingest.Source) recon.CategoryMap {
	pages, err := r.Text.PageTexts(src)
	if err != nil {
		log.Printf("[PIPELINE] Could not read report %s, using empty balances: %v", src.Name, err)
		return recon.CategoryMap{}
	}
	return recon.ExtractReportCategories(ingest.DocumentText(pages))
}

// LedgerCategories extracts the ledger side; an unreadable grid or a missing
// header yields an empty map.
func (r *Runner) LedgerCategories(src ingest.Source) recon.CategoryMap {
	grid, err := r.Tables.ReadGrid(src)
	if err != nil {
		log.Printf("[PIPELINE] Could not read ledger %s, using empty balances: %v", src.Name, err)
		return recon.CategoryMap{}
	}
	m, err := recon.ExtractLedgerCategories(grid)
	if err != nil {
		log.Printf("[PIPELINE] %s in %s, using empty balances", err, src.Name)
		return recon.CategoryMap{}
	}
	return m
}

// SplitByKind sorts uploaded files into reports and ledgers by extension.
// Files of any other kind are returned separately.
func SplitByKind(sources []ingest.Source) (reports, ledgers []ingest.Source, other []string) {
	for _, s := range sources {
		switch ingest.KindOf(s.Name) {
		case ingest.KindReport:
			reports = append(reports, s)
		case ingest.KindLedger:
			ledgers = append(ledgers, s)
		default:
			other = append(other, s.Name)
		}
	}
	return reports, ledgers, other
}

// Describe renders a short human summary of a batch for logs and the CLI.
func (b *Batch) Describe() string {
	reconciled := 0
	for _, u := range b.Units {
		if u.Reconciled {
			reconciled++
		}
	}
	return fmt.Sprintf("%d unit(s) reconciled, %d divergent, %d unmatched",
		reconciled, len(b.Units)-reconciled, len(b.Unmatched))
}
