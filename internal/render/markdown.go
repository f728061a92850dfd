package render

import (
	"bytes"
	"fmt"
	"strings"

	"DepreciationRecon/internal/recon"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// SummaryMarkdown is a plain-text rendition of the consolidated report.
func SummaryMarkdown(units []recon.UnitResult, unmatched []string) string {
	var b strings.Builder
	b.WriteString("# " + reportTitle + "\n\n")
	b.WriteString("| Unidade | Total Relatório | Total SIAFI | Diferença | Status |\n")
	b.WriteString("|---|---:|---:|---:|---|\n")
	for _, u := range units {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			u.UnitID, FormatBRL(u.TotalReport), FormatBRL(u.TotalLedger), FormatBRL(u.TotalDifference), u.Status())
	}

	for _, u := range units {
		if u.Reconciled {
			continue
		}
		fmt.Fprintf(&b, "\n## Unidade Gestora %s\n\n", u.UnitID)
		b.WriteString("| Grupo | Relatório | SIAFI | Diferença |\n")
		b.WriteString("|---:|---:|---:|---:|\n")
		for _, d := range u.Divergences {
			fmt.Fprintf(&b, "| %d | %s | %s | %s |\n",
				d.Code, FormatBRL(d.Report), FormatBRL(d.Ledger), FormatBRL(d.Difference))
		}
	}

	if len(unmatched) > 0 {
		b.WriteString("\n## Sem par\n\n")
		for _, id := range unmatched {
			b.WriteString("- " + id + "\n")
		}
	}
	return b.String()
}

// SummaryHTML renders SummaryMarkdown to an HTML fragment.
func SummaryHTML(units []recon.UnitResult, unmatched []string) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(SummaryMarkdown(units, unmatched)), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
