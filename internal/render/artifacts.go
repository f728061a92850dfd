package render

import (
	"fmt"
	"os"
	"path/filepath"

	"DepreciationRecon/internal/recon"
)

// Artifacts are the rendered outputs of one reconciliation run.
type Artifacts struct {
	PDF      []byte
	XLSX     []byte
	Markdown string
	HTML     []byte
}

// Build renders every output for the given units.
func Build(units []recon.UnitResult, unmatched []string, opts PDFOptions) (*Artifacts, error) {
	pdf, err := PDFBytes(units, opts)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	book, err := Workbook(units, unmatched)
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	html, err := SummaryHTML(units, unmatched)
	if err != nil {
		return nil, fmt.Errorf("render summary: %w", err)
	}
	return &Artifacts{
		PDF:      pdf,
		XLSX:     book.Bytes(),
		Markdown: SummaryMarkdown(units, unmatched),
		HTML:     html,
	}, nil
}

// WriteFiles writes the outputs to the given paths, skipping empty ones.
func (a *Artifacts) WriteFiles(pdfPath, xlsxPath string) error {
	for _, out := range []struct {
		path string
		data []byte
	}{{pdfPath, a.PDF}, {xlsxPath, a.XLSX}} {
		if out.path == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(out.path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(out.path, out.data, 0644); err != nil {
			return err
		}
	}
	return nil
}
