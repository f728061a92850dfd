package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"DepreciationRecon/api/runs"
	"DepreciationRecon/internal/config"
	"DepreciationRecon/internal/ingest"
	"DepreciationRecon/internal/pipeline"
	"DepreciationRecon/internal/progress"
	"DepreciationRecon/internal/serviceiface"
)

// GatewayService serves the reconciliation HTTP API.
type GatewayService struct {
	config   map[string]interface{}
	server   *http.Server
	progress *progress.SSEServer
}

func NewGatewayService(cfg map[string]interface{}) serviceiface.Service {
	return &GatewayService{
		config:   cfg,
		progress: progress.NewSSEServer(config.Duration(cfg, "sse_ping", 30*time.Second)),
	}
}

func (s *GatewayService) Name() string {
	return "gateway"
}

// Handler builds the router with its own runner and run store.
func (s *GatewayService) Handler() http.Handler {
	comma := config.Delimiter(s.config, "csv_delimiter", config.DefaultCSVDelimiter)
	runner := pipeline.NewRunner(ingest.NewPDFTextExtractor(), ingest.NewGridReader(comma))
	store := runs.NewStore(config.Int(s.config, "max_runs", config.MaxStoredRuns))

	h := runs.NewHandler(runner, store)
	h.Progress = s.progress
	h.ReportAuthor = config.String(s.config, "report_author", "")
	h.MaxUploadBytes = int64(config.Int(s.config, "max_upload_mb", config.MaxUploadBytes>>20)) << 20
	return NewRouter(h)
}

func (s *GatewayService) Start() error {
	port := config.Int(s.config, "port", config.DefaultHTTPPort)
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("API Gateway started on :%d", port)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Gateway server failed: %v", err)
		}
	}()
	return nil
}

func (s *GatewayService) Stop() error {
	s.progress.Stop()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
