package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"DepreciationRecon/internal/checksum"
	"DepreciationRecon/internal/ingest"
	"DepreciationRecon/internal/logger"
	"DepreciationRecon/internal/pipeline"
	"DepreciationRecon/internal/render"
)

type InboxConfig struct {
	Schedule  string
	InboxDir  string
	OutboxDir string
	TimeZone  string
	// Author is stamped into the PDF metadata when set.
	Author    string
}

// InboxJob reconciles whatever sits in the inbox folder and drops the
// consolidated outputs into the outbox. An unchanged inbox is not reprocessed.
type InboxJob struct {
	cfg     InboxConfig
	runner  *pipeline.Runner
	matcher *checksum.ChecksumMatcher
	loc     *time.Location
	now     func() time.Time
}

func NewInboxJob(cfg InboxConfig, runner *pipeline.Runner) *InboxJob {
	return &InboxJob{
		cfg:     cfg,
		runner:  runner,
		matcher: checksum.NewChecksumMatcher(""),
		loc:     time.Local,
		now:     time.Now,
	}
}

// ProcessOnce runs a single pass. It returns the base name of the written
// outputs, or "" when there was nothing new to do.
func (j *InboxJob) ProcessOnce(ctx context.Context) (string, error) {
	sources, err := readInbox(j.cfg.InboxDir)
	if err != nil {
		return "", err
	}
	reports, ledgers, other := pipeline.SplitByKind(sources)
	if len(reports) == 0 || len(ledgers) == 0 {
		return "", nil
	}

	entries := make([]checksum.Entry, 0, len(reports)+len(ledgers))
	for _, s := range append(append([]ingest.Source{}, reports...), ledgers...) {
		entries = append(entries, checksum.Entry{Name: s.Name, Data: s.Data})
	}
	same, err := j.matcher.Match(entries)
	if err != nil {
		return "", err
	}
	if same {
		return "", nil
	}
	sum, _ := checksum.Fingerprint(entries)
	if len(other) > 0 {
		logger.Auditf("[INBOX] Ignoring %d file(s) of unknown type: %v", len(other), other)
	}

	batch, err := j.runner.Run(ctx, reports, ledgers, nil)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoUnits) {
			j.matcher.Remember(sum)
		}
		return "", err
	}

	artifacts, err := render.Build(batch.Units, batch.UnmatchedIDs(), render.PDFOptions{Tolerance: j.runner.Tolerance, Author: j.cfg.Author})
	if err != nil {
		return "", err
	}
	base := "conciliacao_" + j.now().In(j.loc).Format("20060102_150405")
	err = artifacts.WriteFiles(
		filepath.Join(j.cfg.OutboxDir, base+".pdf"),
		filepath.Join(j.cfg.OutboxDir, base+".xlsx"),
	)
	if err != nil {
		return "", fmt.Errorf("write outbox: %w", err)
	}
	j.matcher.Remember(sum)
	logger.Auditf("[INBOX] %s written to %s: %s", base, j.cfg.OutboxDir, batch.Describe())
	return base, nil
}

func readInbox(dir string) ([]ingest.Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	sources := make([]ingest.Source, 0, len(names))
	for _, name := range names {
		src, err := ingest.ReadSource(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}
