package runs

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"DepreciationRecon/api/constants"
	"DepreciationRecon/api/utils"
	"DepreciationRecon/internal/config"
	"DepreciationRecon/internal/ingest"
	"DepreciationRecon/internal/logger"
	"DepreciationRecon/internal/pipeline"
	"DepreciationRecon/internal/progress"
	"DepreciationRecon/internal/render"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Handler serves reconciliation uploads and their downloads.
type Handler struct {
	Runner         *pipeline.Runner
	Store          *Store
	Progress       *progress.SSEServer
	MaxUploadBytes int64
	ReportAuthor   string
	newID          func() string
	now            func() time.Time
}

func NewHandler(runner *pipeline.Runner, store *Store) *Handler {
	return &Handler{
		Runner:         runner,
		Store:          store,
		MaxUploadBytes: config.MaxUploadBytes,
		newID:          uuid.NewString,
		now:            time.Now,
	}
}

// CreateRun handles POST /recon/runs. Reports and ledgers come in the
// multipart fields "reports" and "ledgers"; files sent under "files" are
// sorted by extension. An optional "stream_id" field publishes per-unit
// progress to the matching event stream.
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondWithError(w, http.StatusRequestEntityTooLarge, constants.ErrUploadTooLarge)
			return
		}
		utils.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidUpload)
		return
	}
	defer r.MultipartForm.RemoveAll()

	reports, err := readParts(r.MultipartForm.File["reports"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidUpload)
		return
	}
	ledgers, err := readParts(r.MultipartForm.File["ledgers"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidUpload)
		return
	}
	mixed, err := readParts(r.MultipartForm.File["files"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidUpload)
		return
	}
	moreReports, moreLedgers, _ := pipeline.SplitByKind(mixed)
	reports = append(reports, moreReports...)
	ledgers = append(ledgers, moreLedgers...)

	var report pipeline.ProgressFunc
	streamID := r.FormValue("stream_id")
	if h.Progress != nil && streamID != "" {
		report = h.Progress.Reporter(streamID)
	}

	batch, err := h.Runner.Run(r.Context(), reports, ledgers, report)
	if err != nil {
		status, msg := userFriendlyRunError(err)
		if report != nil {
			h.Progress.Send(streamID, progress.Failed(msg))
		}
		utils.RespondWithError(w, status, msg)
		return
	}
	if report != nil {
		h.Progress.Send(streamID, progress.Finished(batch.Describe()))
	}

	artifacts, err := render.Build(batch.Units, batch.UnmatchedIDs(), render.PDFOptions{Tolerance: h.Runner.Tolerance, Author: h.ReportAuthor})
	if err != nil {
		logger.Auditf("[API] Rendering failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, constants.ErrRenderFailed)
		return
	}

	run := &Run{ID: h.newID(), CreatedAt: h.now(), Batch: batch, Artifacts: artifacts}
	h.Store.Put(run)
	logger.Auditf("[API] Run %s stored: %s", run.ID, batch.Describe())

	utils.RespondWithPayload(w, http.StatusCreated, runPayload(run))
}

// GetRun handles GET /recon/runs/{id}.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookup(w, r)
	if !ok {
		return
	}
	payload := runPayload(run)
	payload["units"] = run.Batch.Units
	utils.RespondWithPayload(w, http.StatusOK, payload)
}

func (h *Handler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondWithFile(w, constants.ContentTypePDF, config.ReportFileName, run.Artifacts.PDF)
}

func (h *Handler) DownloadXLSX(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondWithFile(w, constants.ContentTypeXLSX, config.BookFileName, run.Artifacts.XLSX)
}

// Summary handles GET /recon/runs/{id}/summary.html.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set(constants.ContentType, constants.ContentTypeHTML)
	w.Write(run.Artifacts.HTML)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*Run, bool) {
	run, err := h.Store.Get(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, constants.ErrRunNotFound)
		return nil, false
	}
	return run, true
}

func runPayload(run *Run) map[string]interface{} {
	return map[string]interface{}{
		"run_id":     run.ID,
		"created_at": run.CreatedAt.Format(constants.DateTimeFormat),
		"message":    run.Batch.Describe(),
		"summary":    run.Batch.Summary(),
		"unmatched":  run.Batch.Unmatched,
		"ignored":    run.Batch.Ignored,
		"report_url": "/recon/runs/" + run.ID + "/report.pdf",
		"book_url":   "/recon/runs/" + run.ID + "/report.xlsx",
		"html_url":   "/recon/runs/" + run.ID + "/summary.html",
	}
}

func readParts(headers []*multipart.FileHeader) ([]ingest.Source, error) {
	sources := make([]ingest.Source, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		src, err := ingest.ReadSourceFrom(fh.Filename, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func userFriendlyRunError(err error) (int, string) {
	switch {
	case errors.Is(err, pipeline.ErrMissingSources):
		return http.StatusBadRequest, constants.ErrMissingSources
	case errors.Is(err, pipeline.ErrNoUnits):
		return http.StatusUnprocessableEntity, constants.ErrNoUnits
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, constants.ErrReconcileCanceled
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
