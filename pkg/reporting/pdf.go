package reporting

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"
)

// ErrEncoding marks a failure inside the PDF encoder. Rendering is
// deterministic, so retrying the same record cannot succeed.
var ErrEncoding = errors.New("PDF encoding failed")

const generatedLayout = "January 02, 2006 - 03:04 PM"

// PDFGenerator handles PDF report generation. It holds configuration only;
// every Generate call builds its own canvas and cursor.
type PDFGenerator struct {
	layout  Layout
	catalog func() *WorkupCatalog
	now     func() time.Time
	logger  zerolog.Logger
}

// Option configures a PDFGenerator or a CSVGenerator.
type Option func(*PDFGenerator)

// WithClock sets the source of the generation timestamp.
func WithClock(now func() time.Time) Option {
	return func(g *PDFGenerator) { g.now = now }
}

// WithWorkupCatalog replaces the built-in workup panels.
func WithWorkupCatalog(c *WorkupCatalog) Option {
	return func(g *PDFGenerator) {
		if c != nil {
			g.catalog = func() *WorkupCatalog { return c }
		}
	}
}

// WithWorkupSource resolves the catalog on every render, so a catalog that is
// reloaded while the process runs takes effect on the next report. A nil
// result falls back to the built-in panels.
func WithWorkupSource(src func() *WorkupCatalog) Option {
	return func(g *PDFGenerator) {
		if src != nil {
			g.catalog = src
		}
	}
}

// WithLayout overrides page geometry.
func WithLayout(l Layout) Option {
	return func(g *PDFGenerator) { g.layout = l }
}

// WithLogger attaches a logger for render diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(g *PDFGenerator) { g.logger = l }
}

// NewPDFGenerator creates a new PDF generator.
func NewPDFGenerator(opts ...Option) *PDFGenerator {
	g := &PDFGenerator{
		layout:  DefaultLayout(),
		catalog: DefaultWorkupCatalog,
		now:     time.Now,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result is a finished report.
type Result struct {
	Data        []byte
	ContentType string
	Pages       int
	GeneratedAt time.Time
}

// Render draws rec and returns the encoded document. On failure no bytes
// are returned.
func (g *PDFGenerator) Render(rec *AnalysisRecord) (*Result, error) {
	if rec == nil {
		rec = &AnalysisRecord{}
	}
	generatedAt := g.now()

	pdf := g.newCanvas(generatedAt)
	doc := newDocument(pdf, g.layout, generatedAt.Format(generatedLayout))
	pdf.SetFooterFunc(doc.drawFooter)

	g.logger.Debug().
		Strs("sections", rec.Sections()).
		Msg("Rendering analysis report")

	doc.newPage()
	doc.writePatient(rec.Patient)
	doc.writeAgents(rec.Agents)
	doc.writeDifferential(rec.Symptoms)
	doc.writeWorkup(rec.Symptoms, g.workup())
	doc.writeTreatment(rec.Treatment)
	doc.writeLiterature(rec.Literature)
	doc.writeCases(rec.Cases)
	doc.writeSummary(rec.Summary)

	pages := pdf.PageCount()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	g.logger.Debug().
		Int("pages", pages).
		Int("bytes", buf.Len()).
		Msg("Analysis report rendered")

	return &Result{
		Data:        buf.Bytes(),
		ContentType: contentTypePDF,
		Pages:       pages,
		GeneratedAt: generatedAt,
	}, nil
}

func (g *PDFGenerator) workup() *WorkupCatalog {
	if c := g.catalog(); c != nil {
		return c
	}
	return DefaultWorkupCatalog()
}

// Generate creates a PDF report from the provided record.
func (g *PDFGenerator) Generate(rec *AnalysisRecord) ([]byte, error) {
	res, err := g.Render(rec)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// newCanvas configures an fpdf document: page geometry, metadata pinned to
// the generation time and sorted catalogs so equal input gives equal bytes.
func (g *PDFGenerator) newCanvas(generatedAt time.Time) *fpdf.Fpdf {
	l := g.layout
	pdf := fpdf.New("P", "mm", l.PageSize, "")
	pdf.SetMargins(l.MarginLeft, l.MarginTop, l.MarginRight)
	pdf.SetAutoPageBreak(false, l.BottomReserve)
	pdf.SetCellMargin(l.CellPadding)
	pdf.AliasNbPages(totalPagesAlias)
	pdf.SetTitle(reportTitle, false)
	pdf.SetAuthor(reportAuthor, false)
	pdf.SetCreator(reportAuthor, false)
	pdf.SetCreationDate(generatedAt)
	pdf.SetModificationDate(generatedAt)
	pdf.SetCatalogSort(true)
	return pdf
}

// Render is a convenience wrapper using the default generator.
func Render(rec *AnalysisRecord) ([]byte, error) {
	return NewPDFGenerator().Generate(rec)
}
