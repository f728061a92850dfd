package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"DepreciationRecon/internal/config"
	"DepreciationRecon/internal/ingest"
	"DepreciationRecon/internal/pipeline"
	"DepreciationRecon/internal/render"
)

// stringArray collects a repeatable flag.
type stringArray []string

func (s *stringArray) String() string {
	return strings.Join(*s, ",")
}

func (s *stringArray) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func main() {
	_ = godotenv.Load()

	var reports, ledgers stringArray
	flag.Var(&reports, "reports", "Report PDF file or folder (can be used multiple times)")
	flag.Var(&ledgers, "ledgers", "SIAFI ledger CSV/XLSX/XLS file or folder (can be used multiple times)")
	pdfPath := flag.String("pdf", config.ReportFileName, "Output PDF path, empty to skip")
	xlsxPath := flag.String("xlsx", "", "Output XLSX path, empty to skip")
	author := flag.String("author", config.Env("RECON_REPORT_AUTHOR", ""), "Author stamped into the PDF metadata")
	mdPath := flag.String("md", "", "Output Markdown summary path, empty to skip")
	delimiter := flag.String("delimiter", config.Env("RECON_CSV_DELIMITER", string(config.DefaultCSVDelimiter)), "CSV field delimiter (a character, or \"tab\")")
	flag.Parse()

	comma, err := config.ParseDelimiter(*delimiter)
	if len(reports) == 0 || len(ledgers) == 0 || err != nil {
		flag.Usage()
		os.Exit(2)
	}

	reportSources, err := ingest.CollectSources(reports, ingest.KindReport)
	if err != nil {
		log.Fatal(err)
	}
	ledgerSources, err := ingest.CollectSources(ledgers, ingest.KindLedger)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := pipeline.NewRunner(ingest.NewPDFTextExtractor(), ingest.NewGridReader(comma))
	batch, err := runner.Run(ctx, reportSources, ledgerSources, func(done, total int, unitID string) {
		fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", done, total, unitID)
	})
	if err != nil {
		log.Fatal(err)
	}

	artifacts, err := render.Build(batch.Units, batch.UnmatchedIDs(), render.PDFOptions{Author: *author})
	if err != nil {
		log.Fatal(err)
	}
	if err := artifacts.WriteFiles(*pdfPath, *xlsxPath); err != nil {
		log.Fatal(err)
	}
	if *mdPath != "" {
		if err := os.WriteFile(*mdPath, []byte(artifacts.Markdown), 0644); err != nil {
			log.Fatal(err)
		}
	}

	fmt.Println("Reconciliation Summary")
	fmt.Println("-----------------------")
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "UG\tStatus\tDiferença")
	for _, row := range batch.Summary() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.UnitID, row.Status, render.FormatMoney(row.TotalDifference))
	}
	tw.Flush()

	if len(batch.Unmatched) > 0 {
		fmt.Println("\nUnits without a counterpart:")
		for _, u := range batch.Unmatched {
			side := "report only"
			if u.HasLedger {
				side = "ledger only"
			}
			fmt.Printf("%s (%s)\n", u.UnitID, side)
		}
	}
	if len(batch.Ignored) > 0 {
		fmt.Println("\nIgnored files:", strings.Join(batch.Ignored, ", "))
	}
	fmt.Println()
	fmt.Println(batch.Describe())
	for _, p := range []string{*pdfPath, *xlsxPath, *mdPath} {
		if p != "" {
			fmt.Println("Written:", p)
		}
	}
}
