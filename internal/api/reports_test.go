package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medsai/report-engine/internal/archive"
	reperrors "github.com/medsai/report-engine/internal/errors"
	"github.com/medsai/report-engine/pkg/reporting"
)

const recordJSON = `{
  "patient_info": {"patientId": "P-1042", "age": 58, "gender": "female", "urgency": "high"},
  "symptom_analysis": {
    "risk_level": "High",
    "top_differentials": [{"name": "Diabetic gastroparesis", "icd10cm_code": "K31.84"}]
  },
  "treatment": {"treatments": [{"type": "drug", "name": "Metoclopramide"}]}
}`

type stubEngine struct {
	res  *reporting.Result
	err  error
	reqs []reporting.Request
}

func (e *stubEngine) Generate(req reporting.Request) (*reporting.Result, error) {
	e.reqs = append(e.reqs, req)
	if e.err != nil {
		return nil, e.err
	}
	return e.res, nil
}

func fixedEngine() reporting.Engine {
	return reporting.NewReportEngine(reporting.WithClock(func() time.Time {
		return time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)
	}))
}

func newTestArchive(t *testing.T) *archive.Store {
	t.Helper()
	cfg := archive.DefaultConfig(t.TempDir())
	cfg.Retention = 0
	store, err := archive.NewStore(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func postReport(t *testing.T, srv http.Handler, query, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/reports"+query, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeAPIError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	return apiErr
}

func TestHealth(t *testing.T) {
	srv := NewServer(Options{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestGenerateReport_PDF(t *testing.T) {
	srv := NewServer(Options{Engine: fixedEngine(), Archive: newTestArchive(t)})

	rec := postReport(t, srv, "", recordJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	id := rec.Header().Get("X-Report-ID")
	require.Len(t, id, 26)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="analysis_report-`+id+`.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Header().Get("X-Report-Pages"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
}

func TestGenerateReport_CSV(t *testing.T) {
	srv := NewServer(Options{Engine: fixedEngine()})

	rec := postReport(t, srv, "?format=csv", recordJSON)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")
	assert.Empty(t, rec.Header().Get("X-Report-Pages"))
	assert.Contains(t, rec.Body.String(), "patient_info,patient_id,P-1042")
}

func TestGenerateReport_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		body   string
		status int
		code   string
	}{
		{"malformed json", "", `{"patient_info":`, http.StatusBadRequest, "invalid_json"},
		{"json array", "", `[1,2]`, http.StatusBadRequest, "invalid_json"},
		{"no sections", "", `{"unrelated": true}`, http.StatusBadRequest, "no_sections"},
		{"empty object", "", `{}`, http.StatusBadRequest, "no_sections"},
		{"unknown format", "?format=docx", recordJSON, http.StatusBadRequest, "invalid_format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &stubEngine{}
			srv := NewServer(Options{Engine: engine})

			rec := postReport(t, srv, tt.query, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			apiErr := decodeAPIError(t, rec)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.NotEmpty(t, apiErr.RequestID)
			assert.Empty(t, engine.reqs, "engine must not run for rejected input")
		})
	}
}

func TestGenerateReport_TooLarge(t *testing.T) {
	srv := NewServer(Options{Engine: &stubEngine{}, MaxBodyBytes: 64})

	rec := postReport(t, srv, "", recordJSON)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "payload_too_large", decodeAPIError(t, rec).Code)
}

func TestGenerateReport_EngineFailure(t *testing.T) {
	engine := &stubEngine{err: reporting.ErrEncoding}
	srv := NewServer(Options{Engine: engine})

	rec := postReport(t, srv, "", recordJSON)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "generation_failed", decodeAPIError(t, rec).Code)
	require.Len(t, engine.reqs, 1)
	assert.Equal(t, reporting.FormatPDF, engine.reqs[0].Format)
	assert.Equal(t, "P-1042", engine.reqs[0].Record.Patient.PatientID)
}

func TestGenerateReport_Validation(t *testing.T) {
	engine := &stubEngine{res: &reporting.Result{Data: []byte("%PDF-x"), ContentType: "application/pdf", Pages: 2}}

	calls := 0
	srv := NewServer(Options{Engine: engine, Validator: func(data []byte) (int, error) {
		calls++
		return 2, nil
	}})
	rec := postReport(t, srv, "", recordJSON)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)

	srv = NewServer(Options{Engine: engine, Validator: func([]byte) (int, error) { return 3, nil }})
	rec = postReport(t, srv, "", recordJSON)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	srv = NewServer(Options{Engine: engine, Validator: func([]byte) (int, error) { return 0, errors.New("broken xref") }})
	rec = postReport(t, srv, "", recordJSON)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListAndGetReports(t *testing.T) {
	store := newTestArchive(t)
	srv := NewServer(Options{Engine: fixedEngine(), Archive: store})

	first := postReport(t, srv, "", recordJSON)
	require.Equal(t, http.StatusOK, first.Code)
	second := postReport(t, srv, "?format=csv", recordJSON)
	require.Equal(t, http.StatusOK, second.Code)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports?limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Reports []reportSummary `json:"reports"`
		Limit   int             `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, 1, listing.Limit)
	require.Len(t, listing.Reports, 1)
	assert.Equal(t, "P-1042", listing.Reports[0].PatientID)
	assert.Contains(t, listing.Reports[0].Sections, "treatment")

	id := first.Header().Get("X-Report-ID")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, first.Body.Bytes(), rec.Body.Bytes())
	assert.Equal(t, first.Header().Get("X-Report-Pages"), rec.Header().Get("X-Report-Pages"))

	id = second.Header().Get("X-Report-ID")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), id+".csv")
}

func TestGetReport_NotFound(t *testing.T) {
	srv := NewServer(Options{Archive: newTestArchive(t)})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeAPIError(t, rec).Code)

	srv = NewServer(Options{})
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListReports_NoArchive(t *testing.T) {
	srv := NewServer(Options{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports?limit=500", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reports":[],"limit":100}`, rec.Body.String())
}

type failingArchive struct{}

func (failingArchive) Save(context.Context, *archive.Entry) (string, error) {
	return "", reperrors.WrapStorageError("archive_save", errors.New("disk full"))
}

func (failingArchive) Get(context.Context, string) (*archive.Entry, error) {
	return nil, reperrors.WrapStorageError("archive_get", errors.New("disk gone"))
}

func (failingArchive) List(context.Context, int) ([]archive.Entry, error) {
	return nil, reperrors.WrapStorageError("archive_list", errors.New("disk gone"))
}

func (failingArchive) Count(context.Context) (int, error) { return 0, nil }

func TestArchiveFailures(t *testing.T) {
	srv := NewServer(Options{Engine: fixedEngine(), Archive: failingArchive{}})

	// A failed save still returns the report.
	rec := postReport(t, srv, "", recordJSON)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/abc", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAttachment(t *testing.T) {
	assert.Equal(t, `attachment; filename="a-b.pdf"`, attachment("a/b.pdf"))
	assert.Equal(t, `attachment; filename="evil.pdf"`, attachment("e\"vi\r\nl.pdf"))
}
