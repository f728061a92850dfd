package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"DepreciationRecon/internal/config"
	"DepreciationRecon/internal/ingest"
	"DepreciationRecon/internal/logger"
	"DepreciationRecon/internal/pipeline"
	"DepreciationRecon/internal/serviceiface"

	"github.com/robfig/cron/v3"
)

// CronService runs the inbox job on a cron schedule.
type CronService struct {
	cfg   InboxConfig
	inbox *InboxJob
	cron  *cron.Cron
}

func NewCronService(cfg map[string]interface{}) serviceiface.Service {
	ic := InboxConfig{
		Schedule:  config.String(cfg, "schedule", config.DefaultInboxSchedule),
		InboxDir:  config.String(cfg, "inbox_dir", config.DefaultInboxDir),
		OutboxDir: config.String(cfg, "outbox_dir", config.DefaultOutboxDir),
		TimeZone:  config.String(cfg, "timezone", config.DefaultTimeZone),
		Author:    config.String(cfg, "report_author", ""),
	}
	comma := config.Delimiter(cfg, "csv_delimiter", config.DefaultCSVDelimiter)
	runner := pipeline.NewRunner(ingest.NewPDFTextExtractor(), ingest.NewGridReader(comma))
	return &CronService{cfg: ic, inbox: NewInboxJob(ic, runner)}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	log.Println("[CRON] Starting cron service...")

	loc, err := time.LoadLocation(s.cfg.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid timezone for inbox job: %v", err)
	}
	s.inbox.loc = loc

	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log.Default()))),
	)
	_, err = s.cron.AddFunc(s.cfg.Schedule, func() {
		logger.Auditf("[CRON] Scanning inbox %s at %s", s.cfg.InboxDir, time.Now().In(loc))
		if _, err := s.inbox.ProcessOnce(context.Background()); err != nil {
			logger.Auditf("[CRON] Inbox run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule inbox job: %v", err)
	}

	s.cron.Start()
	logger.Auditf("[CRON] Inbox job scheduled (%s) for %s -> %s", s.cfg.Schedule, s.cfg.InboxDir, s.cfg.OutboxDir)
	return nil
}

// Stop waits for a running inbox pass to finish.
func (s *CronService) Stop() error {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	log.Println("[CRON] Cron service stopped.")
	return nil
}
