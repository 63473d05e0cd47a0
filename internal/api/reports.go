package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/medsai/report-engine/internal/archive"
	reperrors "github.com/medsai/report-engine/internal/errors"
	"github.com/medsai/report-engine/internal/logging"
	"github.com/medsai/report-engine/internal/metrics"
	"github.com/medsai/report-engine/pkg/reporting"
)

// reportSummary is the archive listing entry returned to clients.
type reportSummary struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patientId,omitempty"`
	Format      string    `json:"format"`
	ContentType string    `json:"contentType"`
	Pages       int       `json:"pages"`
	Size        int       `json:"size"`
	Sections    []string  `json:"sections"`
	CreatedAt   time.Time `json:"createdAt"`
}

// handleGenerateReport renders the posted record as PDF (default) or CSV.
func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	format, err := reporting.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeErrorResponse(w, r, http.StatusBadRequest, "invalid_format", "Format must be 'pdf' or 'csv'", nil)
		return
	}

	rec, err := s.decodeRecord(w, r)
	if err != nil {
		metrics.RecordRender(string(format), metrics.OutcomeInvalid, 0, 0, 0)
		switch {
		case errors.Is(err, reperrors.ErrTooLarge):
			writeErrorResponse(w, r, http.StatusRequestEntityTooLarge, "payload_too_large",
				fmt.Sprintf("Request body exceeds %d bytes", s.maxBodyBytes), nil)
		case errors.Is(err, reperrors.ErrNoSections):
			writeErrorResponse(w, r, http.StatusBadRequest, "no_sections", "No report sections found in payload", nil)
		default:
			writeErrorResponse(w, r, http.StatusBadRequest, "invalid_json", "Request body is not a valid JSON object", nil)
		}
		return
	}

	sections := rec.Sections()
	logger.Info().Strs("sections", sections).Str("format", string(format)).Msg("Generating report")

	start := time.Now()
	res, err := s.engine.Generate(reporting.Request{Record: rec, Format: format})
	if err == nil && format == reporting.FormatPDF && s.validate != nil {
		var pages int
		if pages, err = s.validate(res.Data); err == nil && pages != res.Pages {
			err = fmt.Errorf("validator saw %d pages, renderer wrote %d", pages, res.Pages)
		}
	}
	if err != nil {
		metrics.RecordRender(string(format), metrics.OutcomeFailed, time.Since(start), 0, 0)
		err = reperrors.WrapRenderError("render_"+string(format), err)
		logger.Error().Err(err).Msg("Report generation failed")
		writeErrorResponse(w, r, reperrors.HTTPStatus(err), "generation_failed", "Failed to generate report", nil)
		return
	}
	metrics.RecordRender(string(format), metrics.OutcomeSuccess, time.Since(start), res.Pages, len(res.Data))
	metrics.RecordSections(sections)

	id := ulid.Make().String()
	s.archiveReport(r, &archive.Entry{
		ID:          id,
		PatientID:   patientID(rec),
		Format:      string(format),
		ContentType: res.ContentType,
		Pages:       res.Pages,
		Sections:    sections,
		CreatedAt:   res.GeneratedAt,
		Data:        res.Data,
	})

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", attachment("analysis_report-"+id+format.Extension()))
	w.Header().Set("X-Report-ID", id)
	if format == reporting.FormatPDF {
		w.Header().Set("X-Report-Pages", strconv.Itoa(res.Pages))
	}
	w.Write(res.Data)
}

// decodeRecord reads the bounded request body and parses it into a record
// with at least one section.
func (s *Server) decodeRecord(w http.ResponseWriter, r *http.Request) (*reporting.AnalysisRecord, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, reperrors.NewReportError(reperrors.ErrorTypeTooLarge, "read_body", reperrors.ErrTooLarge)
		}
		return nil, reperrors.WrapValidationError("read_body", err)
	}

	rec, err := reporting.ParseJSON(body)
	if err != nil {
		return nil, reperrors.WrapValidationError("decode_record", err)
	}
	if rec.IsEmpty() {
		return nil, reperrors.WrapValidationError("decode_record", reperrors.ErrNoSections)
	}
	return rec, nil
}

// archiveReport stores a rendered report. Failures are logged and counted
// but never fail the request that produced the report.
func (s *Server) archiveReport(r *http.Request, e *archive.Entry) {
	if s.archive == nil {
		return
	}
	if _, err := s.archive.Save(r.Context(), e); err != nil {
		metrics.RecordArchiveError("save")
		log.Error().Err(err).Str("report_id", e.ID).Msg("Failed to archive report")
		return
	}
	if n, err := s.archive.Count(r.Context()); err == nil {
		metrics.SetArchiveSize(n)
	}
}

// handleListReports lists archived report metadata, newest first.
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	limit = archive.ClampLimit(limit)

	out := []reportSummary{}
	if s.archive != nil {
		entries, err := s.archive.List(r.Context(), limit)
		if err != nil {
			metrics.RecordArchiveError("list")
			log.Error().Err(err).Msg("Failed to list archived reports")
			writeErrorResponse(w, r, http.StatusInternalServerError, "archive_unavailable", "Failed to list reports", nil)
			return
		}
		for _, e := range entries {
			out = append(out, reportSummary{
				ID:          e.ID,
				PatientID:   e.PatientID,
				Format:      e.Format,
				ContentType: e.ContentType,
				Pages:       e.Pages,
				Size:        e.Size,
				Sections:    e.Sections,
				CreatedAt:   e.CreatedAt,
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reports": out,
		"limit":   limit,
	})
}

// handleGetReport returns an archived report's bytes.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reportID")
	if s.archive == nil {
		writeErrorResponse(w, r, http.StatusNotFound, "not_found", "Report archive is disabled", nil)
		return
	}

	e, err := s.archive.Get(r.Context(), id)
	if err != nil {
		if reperrors.IsNotFound(err) {
			writeErrorResponse(w, r, http.StatusNotFound, "not_found", "Report not found", map[string]string{"id": id})
			return
		}
		metrics.RecordArchiveError("get")
		log.Error().Err(err).Str("report_id", id).Msg("Failed to load archived report")
		writeErrorResponse(w, r, http.StatusInternalServerError, "archive_unavailable", "Failed to load report", nil)
		return
	}

	ext := ".pdf"
	if f, err := reporting.ParseFormat(e.Format); err == nil {
		ext = f.Extension()
	}
	w.Header().Set("Content-Type", e.ContentType)
	w.Header().Set("Content-Disposition", attachment("analysis_report-"+e.ID+ext))
	w.Header().Set("X-Report-ID", e.ID)
	if e.Pages > 0 {
		w.Header().Set("X-Report-Pages", strconv.Itoa(e.Pages))
	}
	w.Write(e.Data)
}

func patientID(rec *reporting.AnalysisRecord) string {
	if rec.Patient == nil {
		return ""
	}
	return rec.Patient.PatientID
}

// attachment builds a Content-Disposition value, dropping characters that
// could break the header.
func attachment(filename string) string {
	filename = strings.Map(func(r rune) rune {
		switch r {
		case '"', '\\', '\r', '\n':
			return -1
		case '/':
			return '-'
		}
		return r
	}, filename)
	return fmt.Sprintf("attachment; filename=\"%s\"", filename)
}
