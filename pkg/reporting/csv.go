package reporting

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"
)

// CSVGenerator flattens a record into section/field/value rows.
type CSVGenerator struct {
	now    func() time.Time
	workup func() *WorkupCatalog
}

// NewCSVGenerator creates a CSV generator. It honours the clock and workup
// options; layout and logger options only affect PDF output.
func NewCSVGenerator(opts ...Option) *CSVGenerator {
	cfg := NewPDFGenerator(opts...)
	return &CSVGenerator{now: cfg.now, workup: cfg.workup}
}

// Render creates a CSV export of rec.
func (g *CSVGenerator) Render(rec *AnalysisRecord) (*Result, error) {
	if rec == nil {
		rec = &AnalysisRecord{}
	}
	generatedAt := g.now()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := g.writeHeader(w, generatedAt); err != nil {
		return nil, fmt.Errorf("write CSV header section: %w", err)
	}
	if err := g.writeRows(w, g.rows(rec)); err != nil {
		return nil, fmt.Errorf("write CSV data section: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("CSV write error: %w", err)
	}

	return &Result{Data: buf.Bytes(), ContentType: contentTypeCSV, GeneratedAt: generatedAt}, nil
}

// Generate creates a CSV report from the provided record.
func (g *CSVGenerator) Generate(rec *AnalysisRecord) ([]byte, error) {
	res, err := g.Render(rec)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (g *CSVGenerator) writeHeader(w *csv.Writer, generatedAt time.Time) error {
	headers := [][]string{
		{"# " + reportTitle},
		{"# Generated:", generatedAt.Format(time.RFC3339)},
		{""},
		{"Section", "Field", "Value"},
	}
	for _, row := range headers {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write header row %q: %w", row[0], err)
		}
	}
	return nil
}

func (g *CSVGenerator) writeRows(w *csv.Writer, rows [][3]string) error {
	for _, r := range rows {
		if err := w.Write(r[:]); err != nil {
			return fmt.Errorf("write row %s/%s: %w", r[0], r[1], err)
		}
	}
	return nil
}

// rows walks the record in render order. Limits and defaults match the PDF
// so both exports describe the same report.
func (g *CSVGenerator) rows(rec *AnalysisRecord) [][3]string {
	var out [][3]string
	add := func(section, field, value string) {
		out = append(out, [3]string{section, field, value})
	}
	idx := func(field string, i int) string {
		return field + "[" + strconv.Itoa(i) + "]"
	}

	if p := rec.Patient; p != nil {
		add("patient_info", "patient_id", p.PatientID)
		add("patient_info", "age", p.Age)
		add("patient_info", "gender", p.Gender)
		add("patient_info", "urgency", p.Urgency)
		if p.MedicalHistory != "" {
			add("patient_info", "medical_history", p.MedicalHistory)
		}
		for i, m := range p.Medications {
			add("patient_info", idx("medication", i+1), m)
		}
		if p.PrimaryComplaint != "" {
			add("patient_info", "primary_complaint", p.PrimaryComplaint)
		}
	}

	for _, a := range rec.Agents {
		add("agents", a.Name, a.Status+" "+pctText(a.Progress))
	}

	if s := rec.Symptoms; s != nil {
		pct, _ := confidenceFor(s.RiskLevel)
		add("symptom_analysis", "risk_level", s.RiskLevel)
		add("symptom_analysis", "confidence", pctText(pct))
		for i, dx := range s.Differentials {
			add("symptom_analysis", idx("differential", i+1), dx.Name+" ("+dx.ICD10Code+")")
		}
		primary := ""
		if len(s.Differentials) > 0 {
			primary = s.Differentials[0].Name
		}
		panel := g.workup().Lookup(primary)
		for i, t := range panel.Tests {
			add("workup", idx(panel.Name, i+1), t)
		}
	}

	if t := rec.Treatment; t != nil {
		for i, tr := range t.Treatments {
			kind := "lifestyle"
			if tr.IsDrug() {
				kind = "drug"
			}
			add("treatment", idx(kind, i+1), tr.Name)
		}
	}

	if l := rec.Literature; l != nil {
		for i, a := range l.Articles[:min(len(l.Articles), maxLiterature)] {
			v := a.Title
			if a.PMID != "" {
				v += " (PMID " + a.PMID + ")"
			}
			add("literature", idx("article", i+1), v)
		}
	}

	if c := rec.Cases; c != nil {
		for i, mc := range c.Cases[:min(len(c.Cases), maxCases)] {
			add("case_matcher", idx("case", i+1), mc.Name+" ("+mc.ICDCode+")")
		}
	}

	if s := rec.Summary; s != nil {
		if s.PatientSummary != "" {
			add("summary", "patient_summary", s.PatientSummary)
		}
		if s.ClinicalSummary != "" {
			add("summary", "clinical_summary", s.ClinicalSummary)
		}
		for i, step := range s.NextSteps() {
			add("summary", idx("next_step", i+1), step)
		}
	}
	return out
}
