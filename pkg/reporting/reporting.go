package reporting

import (
	"fmt"
	"strings"
)

// ReportFormat represents the output format of a report
type ReportFormat string

const (
	FormatPDF ReportFormat = "pdf"
	FormatCSV ReportFormat = "csv"
)

const (
	contentTypePDF = "application/pdf"
	contentTypeCSV = "text/csv"
)

// ParseFormat resolves a user supplied format name. An empty name means PDF.
func ParseFormat(s string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported report format %q", s)
}

// Extension returns the file extension for the format.
func (f ReportFormat) Extension() string {
	if f == FormatCSV {
		return ".csv"
	}
	return ".pdf"
}

// Request is a single render job.
type Request struct {
	Record *AnalysisRecord
	Format ReportFormat
}

// Engine defines the interface for report generation. The HTTP layer and
// the CLI depend on this rather than on a concrete generator.
type Engine interface {
	Generate(req Request) (*Result, error)
}

// ReportEngine dispatches a request to the generator for its format.
type ReportEngine struct {
	pdf *PDFGenerator
	csv *CSVGenerator
}

// NewReportEngine builds an engine whose PDF and CSV output share one clock
// and workup catalog.
func NewReportEngine(opts ...Option) *ReportEngine {
	return &ReportEngine{
		pdf: NewPDFGenerator(opts...),
		csv: NewCSVGenerator(opts...),
	}
}

// Generate renders req.Record in req.Format.
func (e *ReportEngine) Generate(req Request) (*Result, error) {
	switch req.Format {
	case "", FormatPDF:
		return e.pdf.Render(req.Record)
	case FormatCSV:
		return e.csv.Render(req.Record)
	}
	return nil, fmt.Errorf("unsupported report format %q", req.Format)
}
