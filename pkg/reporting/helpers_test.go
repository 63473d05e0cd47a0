package reporting

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	pdflib "github.com/ledongthuc/pdf"
)

// drawnCell is one CellFormat call as seen by the recorder.
type drawnCell struct {
	Page int
	X, Y float64
	W, H float64
	Text string
}

// recorder is a real fpdf canvas that also remembers every cell and
// rectangle drawn, so layout assertions can be made without parsing output.
type recorder struct {
	*fpdf.Fpdf
	cells []drawnCell
	rects []Rect
}

func newRecorder() *recorder {
	l := DefaultLayout()
	pdf := fpdf.New("P", "mm", l.PageSize, "")
	pdf.SetMargins(l.MarginLeft, l.MarginTop, l.MarginRight)
	pdf.SetAutoPageBreak(false, l.BottomReserve)
	pdf.SetCellMargin(l.CellPadding)
	return &recorder{Fpdf: pdf}
}

func (r *recorder) CellFormat(w, h float64, txtStr, borderStr string, ln int, alignStr string, fill bool, link int, linkStr string) {
	r.cells = append(r.cells, drawnCell{Page: r.PageNo(), X: r.GetX(), Y: r.GetY(), W: w, H: h, Text: txtStr})
	r.Fpdf.CellFormat(w, h, txtStr, borderStr, ln, alignStr, fill, link, linkStr)
}

func (r *recorder) Rect(x, y, w, h float64, styleStr string) {
	r.rects = append(r.rects, Rect{Page: r.PageNo(), X: x, Y: y, W: w, H: h})
	r.Fpdf.Rect(x, y, w, h, styleStr)
}

// reset forgets decorations drawn so far, typically the first page's banner
// and watermark.
func (r *recorder) reset() {
	r.cells = nil
	r.rects = nil
}

// cellsWith returns the cells whose text contains sub.
func (r *recorder) cellsWith(sub string) []drawnCell {
	var out []drawnCell
	for _, c := range r.cells {
		if strings.Contains(c.Text, sub) {
			out = append(out, c)
		}
	}
	return out
}

// cellsNamed returns the cells whose text is exactly s.
func (r *recorder) cellsNamed(s string) []drawnCell {
	var out []drawnCell
	for _, c := range r.cells {
		if c.Text == s {
			out = append(out, c)
		}
	}
	return out
}

// newTestDocument returns a document with its first page already open.
func newTestDocument(t *testing.T) (*Document, *recorder) {
	t.Helper()
	rec := newRecorder()
	d := newDocument(rec, DefaultLayout(), "January 02, 2026 - 09:30 AM")
	d.newPage()
	rec.reset()
	return d, rec
}

var fixedTime = time.Date(2026, time.January, 2, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

// pdfPages extracts the plain text of every page.
func pdfPages(t *testing.T, data []byte) []string {
	t.Helper()
	r, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("failed to open rendered PDF: %v", err)
	}
	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			t.Fatalf("failed to extract text from page %d: %v", i, err)
		}
		pages = append(pages, text)
	}
	return pages
}

const sampleRecordJSON = `{
  "patient_info": {
    "patientId": "P-1042",
    "age": 58,
    "gender": "female",
    "urgency": "high",
    "medicalHistory": "Type 2 diabetes for 12 years, hypertension",
    "currentMedications": ["Metformin 1000mg", "Lisinopril 10mg"],
    "primary_complaint": "Early satiety, nausea and bloating after meals for three weeks"
  },
  "agent_summary": [
    {"name": "SymptomAnalyzer", "status": "COMPLETED", "progress": 100},
    {"name": "TreatmentAdvisor", "status": "COMPLETED", "progress": "100"},
    {"name": "LiteratureMiner", "status": "COMPLETED", "progress": 100},
    {"name": "CaseMatcher", "status": "RUNNING", "progress": 40.6}
  ],
  "symptom_analysis": {
    "risk_level": "High",
    "top_differentials": [
      {"name": "Diabetic gastroparesis", "icd10cm_code": "K31.84", "rationale": "Long-standing diabetes with postprandial fullness."},
      {"name": "Peptic ulcer disease", "icd10cm_code": "K27.9", "rationale": "Epigastric discomfort after meals."},
      {"name": "Gastric outlet obstruction", "icd10cm_code": "K31.1"}
    ],
    "disclaimer": "For clinical decision support only."
  },
  "treatment": {
    "treatments": [
      {"type": "drug", "name": "Metoclopramide", "class": "Prokinetic", "rationale": "Improves gastric emptying.", "source": "ADA Standards of Care"},
      {"type": "lifestyle", "name": "Small frequent meals", "rationale": "Reduces gastric load."}
    ]
  },
  "literature": {
    "articles": {
      "summaries": [
        {"title": "Gastroparesis in diabetes", "pmid": "31234567", "summary": "Review of diagnosis and management."}
      ]
    }
  },
  "case_matcher": {
    "matched_cases": [
      {"name": "Diabetic gastroparesis", "icd_code": "K31.84", "description": "62-year-old with similar presentation."}
    ]
  },
  "summary": {
    "patient_summary": "58-year-old woman with long-standing diabetes.",
    "clinical_summary": "Presentation consistent with gastroparesis.",
    "recommendations": [
      {"type": "next_steps", "content": "Schedule gastric emptying study"},
      {"type": "note", "content": "Not a next step"},
      {"type": "next_steps", "content": "Review glycemic control in 4 weeks"}
    ]
  }
}`

func sampleRecord(t *testing.T) *AnalysisRecord {
	t.Helper()
	rec, err := ParseJSON([]byte(sampleRecordJSON))
	if err != nil {
		t.Fatalf("sample record should parse: %v", err)
	}
	return rec
}
