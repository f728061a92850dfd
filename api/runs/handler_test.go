package runs

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"DepreciationRecon/internal/ingest"
	"DepreciationRecon/internal/pipeline"
	"DepreciationRecon/internal/recon"

	"github.com/gorilla/mux"
)

type fakeText struct{}

func (fakeText) PageTexts(src ingest.Source) ([]string, error) {
	return []string{string(src.Data)}, nil
}

type fakeTables struct{}

func (fakeTables) ReadGrid(src ingest.Source) (recon.Grid, error) {
	if len(src.Data) == 0 {
		return nil, errors.New("empty")
	}
	return recon.Grid{
		{recon.TextCell("Nat Desp"), recon.TextCell("Saldo")},
		{recon.TextCell("449001"), recon.TextCell(string(src.Data))},
	}, nil
}

type upload struct {
	field, name, content string
}

func multipartRequest(t *testing.T, files []upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte(f.content))
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/recon/runs", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newTestRouter() (*mux.Router, *Handler) {
	runner := &pipeline.Runner{Text: fakeText{}, Tables: fakeTables{}, Tolerance: recon.DefaultTolerance}
	h := NewHandler(runner, NewStore(2))
	n := 0
	h.newID = func() string {
		n++
		return []string{"", "run-a", "run-b", "run-c"}[n]
	}
	h.now = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }

	r := mux.NewRouter()
	r.HandleFunc("/recon/runs", h.CreateRun).Methods(http.MethodPost)
	r.HandleFunc("/recon/runs/{id}", h.GetRun).Methods(http.MethodGet)
	r.HandleFunc("/recon/runs/{id}/report.pdf", h.DownloadPDF).Methods(http.MethodGet)
	r.HandleFunc("/recon/runs/{id}/report.xlsx", h.DownloadXLSX).Methods(http.MethodGet)
	r.HandleFunc("/recon/runs/{id}/summary.html", h.Summary).Methods(http.MethodGet)
	return r, h
}

func TestCreateRunAndDownload(t *testing.T) {
	router, _ := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, []upload{
		{"reports", "153289.pdf", "1 - BENS\n(*) SALDO ATUAL 100,00\n"},
		{"ledgers", "153289_SIAFI.csv", "100,00"},
		{"files", "200100.pdf", "1 - VEICULOS\n(*) SALDO ATUAL 50,00\n"},
		{"files", "200100.xlsx", "40,00"},
		{"files", "300300.pdf", "x"},
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp struct {
		Success   bool                  `json:"success"`
		RunID     string                `json:"run_id"`
		Message   string                `json:"message"`
		Summary   []pipeline.SummaryRow `json:"summary"`
		Unmatched []pipeline.Unmatched  `json:"unmatched"`
		ReportURL string                `json:"report_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.RunID != "run-a" || resp.ReportURL != "/recon/runs/run-a/report.pdf" {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.Summary) != 2 || resp.Summary[0].Status != "Conciliado" || resp.Summary[1].Status != "1 divergência(s)" {
		t.Errorf("summary = %+v", resp.Summary)
	}
	if len(resp.Unmatched) != 1 || resp.Unmatched[0].UnitID != "300300" {
		t.Errorf("unmatched = %+v", resp.Unmatched)
	}
	if resp.Message != "1 unit(s) reconciled, 1 divergent, 1 unmatched" {
		t.Errorf("message = %q", resp.Message)
	}

	for path, ctype := range map[string]string{
		"/recon/runs/run-a/report.pdf":  "application/pdf",
		"/recon/runs/run-a/report.xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"/recon/runs/run-a/summary.html": "text/html; charset=utf-8",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != ctype || rec.Body.Len() == 0 {
			t.Errorf("%s: status %d type %q len %d", path, rec.Code, rec.Header().Get("Content-Type"), rec.Body.Len())
		}
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recon/runs/run-a", nil))
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte(`"units"`)) {
		t.Errorf("get run: %d %s", rec.Code, rec.Body)
	}
}

func TestCreateRunStampsReportAuthor(t *testing.T) {
	router, h := newTestRouter()
	h.ReportAuthor = "UG 153289"

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, []upload{
		{"reports", "153289.pdf", "1 - BENS\n(*) SALDO ATUAL 100,00\n"},
		{"ledgers", "153289_SIAFI.csv", "100,00"},
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recon/runs/run-a/report.pdf", nil))
	author := []byte{0xfe, 0xff}
	for _, c := range []byte(h.ReportAuthor) {
		author = append(author, 0, c)
	}
	if !bytes.Contains(rec.Body.Bytes(), author) {
		t.Error("report author missing from pdf metadata")
	}
}

func TestCreateRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		req    func(t *testing.T) *http.Request
		status int
	}{
		{"not multipart", func(t *testing.T) *http.Request {
			return httptest.NewRequest(http.MethodPost, "/recon/runs", bytes.NewBufferString("{}"))
		}, http.StatusBadRequest},
		{"no ledgers", func(t *testing.T) *http.Request {
			return multipartRequest(t, []upload{{"reports", "1.pdf", "x"}})
		}, http.StatusBadRequest},
		{"no unit ids", func(t *testing.T) *http.Request {
			return multipartRequest(t, []upload{{"reports", "a.pdf", "x"}, {"ledgers", "b.csv", "1"}})
		}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter()
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, tt.req(t))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body)
			}
			if !bytes.Contains(rec.Body.Bytes(), []byte(`"success":false`)) {
				t.Errorf("body = %s", rec.Body)
			}
		})
	}
}

func TestCreateRunTooLarge(t *testing.T) {
	router, h := newTestRouter()
	h.MaxUploadBytes = 64
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, []upload{
		{"reports", "1.pdf", string(bytes.Repeat([]byte("x"), 512))},
		{"ledgers", "1.csv", "1"},
	}))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestUnknownRun(t *testing.T) {
	router, _ := newTestRouter()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recon/runs/missing/report.pdf", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestStoreEvictsOldest(t *testing.T) {
	s := NewStore(2)
	for _, id := range []string{"a", "b", "c"} {
		s.Put(&Run{ID: id})
	}
	if _, err := s.Get("a"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("oldest run still present: %v", err)
	}
	if _, err := s.Get("c"); err != nil {
		t.Errorf("newest run missing: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d", s.Len())
	}
}
