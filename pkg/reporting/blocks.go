package reporting

import (
	"fmt"
	"strings"
)

const (
	maxLiterature = 5
	maxCases      = 3
)

// writePatient renders identity, demographics, history, medications and
// the presenting complaint.
func (d *Document) writePatient(p *PatientInfo) {
	if p == nil {
		return
	}
	d.Section("Patient Information", d.rowFootprint(p.PatientID))
	d.KVRow("Patient ID:", p.PatientID, RowOptions{})
	demo := fmt.Sprintf("Age: %s | Gender: %s | Urgency: %s",
		p.Age, titleCase(p.Gender), strings.ToUpper(p.Urgency))
	d.KVRow("Demographics:", demo, RowOptions{})
	if p.MedicalHistory != "" {
		d.KVRow("Medical History:", p.MedicalHistory, RowOptions{})
	}
	if len(p.Medications) > 0 {
		d.Heading(fontBodyBold, 6, "Current Medications", d.layout.LineHeight)
		d.BulletList(p.Medications, 4, fontSmall)
	}
	if p.PrimaryComplaint != "" {
		d.Heading(fontBodyBold, 6, "Primary Complaint", d.layout.LineHeight)
		d.Paragraph(fontBody, d.layout.LineHeight, 0, p.PrimaryComplaint)
		d.gap(d.layout.RowGap)
	}
}

// writeAgents renders one status chip per upstream agent.
func (d *Document) writeAgents(agents []AgentStatus) {
	if len(agents) == 0 {
		return
	}
	d.Section("AI Agent Summary", chipRowPitch)
	labels := make([]string, 0, len(agents))
	for _, a := range agents {
		labels = append(labels, fmt.Sprintf("%s %s %s", a.Name, a.Status, pctText(a.Progress)))
	}
	d.ChipFlow(labels)
}

// writeDifferential renders the primary diagnosis in a card and the
// alternatives as an enumerated list.
func (d *Document) writeDifferential(s *SymptomAnalysis) {
	if s == nil {
		return
	}
	if len(s.Differentials) == 0 {
		d.Section("Differential Diagnosis", d.layout.LineHeight)
		d.Paragraph(fontBody, d.layout.LineHeight, 0, "No differential diagnoses available.")
		d.writeDisclaimer(s.Disclaimer)
		return
	}

	d.Section("Differential Diagnosis", cardMinHeight)
	primary := s.Differentials[0]
	card := d.OpenCard()
	d.Heading(fontHeading, 6, "Primary Diagnosis: "+primary.Name, 5)
	d.Line(fontSmall, 5, "ICD-10: "+primary.ICD10Code)
	d.gap(1)
	d.Heading(fontBodyBold, 6, "Diagnostic Confidence:", pillHeight)
	pct, color := confidenceFor(s.RiskLevel)
	d.PctPill(pct, strings.ToUpper(s.RiskLevel), color)
	d.Heading(fontBodyBold, 6, "Clinical Reasoning:", d.layout.LineHeight)
	rationale := primary.Rationale
	if rationale == "" {
		rationale = "No rationale provided."
	}
	d.Paragraph(fontBody, d.layout.LineHeight, 0, rationale)
	d.CloseCard(card, 2)

	if len(s.Differentials) > 1 {
		d.Heading(fontBodyBold, 6, "Alternative Diagnoses to Consider:", 5)
		for i, alt := range s.Differentials[1:] {
			d.Line(fontSmall, 5, fmt.Sprintf("%d. %s - %s", i+2, alt.Name, alt.ICD10Code))
			if alt.Rationale != "" {
				d.Paragraph(fontSmall, 4, 3, alt.Rationale)
				d.gap(1)
			}
		}
	}
	d.writeDisclaimer(s.Disclaimer)
}

// writeWorkup renders the test panel matched against the primary diagnosis.
func (d *Document) writeWorkup(s *SymptomAnalysis, catalog *WorkupCatalog) {
	if s == nil {
		return
	}
	primary := ""
	if len(s.Differentials) > 0 {
		primary = s.Differentials[0].Name
	}
	panel := catalog.Lookup(primary)

	d.Section("Recommended Diagnostic Workup", 6+d.layout.LineHeight)
	d.Heading(fontBodyBold, 6, "Recommended Laboratory & Imaging Studies", d.layout.LineHeight)
	d.BulletList(panel.Tests, 4, fontSmall)
}

// writeTreatment splits interventions into pharmacological and
// lifestyle lists.
func (d *Document) writeTreatment(t *TreatmentPlan) {
	if t == nil {
		return
	}
	if len(t.Treatments) == 0 {
		d.Section("Treatment Plan", d.layout.LineHeight)
		d.Paragraph(fontBody, d.layout.LineHeight, 0, "No treatment suggestions available.")
		d.writeDisclaimer(t.Disclaimer)
		return
	}

	var drugs, other []Treatment
	for _, tr := range t.Treatments {
		if tr.IsDrug() {
			drugs = append(drugs, tr)
		} else {
			other = append(other, tr)
		}
	}

	lh := d.layout.LineHeight
	if len(drugs) > 0 {
		d.Section("Treatment Plan", 7+6+lh)
	} else {
		d.Section("Treatment Plan", 7+lh)
	}

	if len(drugs) > 0 {
		d.Heading(fontHeading, 7, "Pharmacological Interventions:", 6+lh)
		for i, tr := range drugs {
			d.Heading(fontBodyBold, 6, fmt.Sprintf("%d. %s (%s)", i+1, tr.Name, tr.Class), lh)
			if tr.Rationale != "" {
				d.Paragraph(fontSmall, 5, 3, "Rationale: "+tr.Rationale)
			}
			if tr.Source != "" {
				d.setTextColor(colorSource)
				d.Paragraph(fontSmall, 4, 3, "Source: "+tr.Source)
				d.setTextColor(colorInk)
			}
			d.gap(1)
		}
	}

	if len(other) > 0 {
		d.Heading(fontHeading, 7, "Lifestyle & Non-Pharmacological Interventions:", lh)
		items := make([]string, 0, len(other))
		for _, tr := range other {
			item := tr.Name
			if tr.Rationale != "" {
				item += ": " + tr.Rationale
			}
			items = append(items, item)
		}
		d.BulletList(items, 4, fontSmall)
	}
	d.writeDisclaimer(t.Disclaimer)
}

// writeLiterature renders up to maxLiterature numbered references.
func (d *Document) writeLiterature(l *Literature) {
	if l == nil {
		return
	}
	d.Section("Evidence-Based References", 5)
	if len(l.Articles) == 0 {
		d.Line(Font{"I", 9}, 5, "No relevant literature found for this condition.")
		return
	}
	for i, a := range l.Articles[:min(len(l.Articles), maxLiterature)] {
		d.Paragraph(fontSmallBold, 5, 0, fmt.Sprintf("[%d] %s", i+1, a.Title))
		if a.PMID != "" {
			d.setTextColor(colorSource)
			d.Line(fontTiny, 4, "PMID: "+a.PMID)
			d.setTextColor(colorInk)
		}
		if a.Summary != "" {
			d.Paragraph(fontSmall, 4, 3, a.Summary)
		}
		d.gap(2)
	}
}

// writeCases renders up to maxCases similar cases.
func (d *Document) writeCases(c *CaseMatches) {
	if c == nil || len(c.Cases) == 0 {
		return
	}
	d.Section("Similar Clinical Cases", 5)
	for i, mc := range c.Cases[:min(len(c.Cases), maxCases)] {
		d.Paragraph(fontSmallBold, 5, 0, fmt.Sprintf("%d. %s (%s)", i+1, mc.Name, mc.ICDCode))
		if mc.Description != "" {
			d.Paragraph(fontSmall, 4, 3, mc.Description)
		}
		d.gap(1)
	}
}

// writeSummary renders the closing narrative and the next-step list.
func (d *Document) writeSummary(s *ClinicalSummary) {
	if s == nil {
		return
	}
	d.Section("Clinical Summary & Next Steps", 6+d.layout.LineHeight)
	if s.PatientSummary != "" {
		d.Heading(fontBodyBold, 6, "Patient Presentation:", d.layout.LineHeight)
		d.Paragraph(fontBody, d.layout.LineHeight, 0, s.PatientSummary)
		d.gap(1)
	}
	if s.ClinicalSummary != "" {
		d.Heading(fontBodyBold, 6, "Clinical Assessment:", d.layout.LineHeight)
		d.Paragraph(fontBody, d.layout.LineHeight, 0, s.ClinicalSummary)
		d.gap(1)
	}
	if steps := s.NextSteps(); len(steps) > 0 {
		d.Heading(fontBodyBold, 6, "Next Steps & Follow-Up", d.layout.LineHeight)
		d.BulletList(steps, 4, fontSmall)
	}
}

func (d *Document) writeDisclaimer(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	d.gap(1)
	d.Note(s)
	d.gap(1)
}
