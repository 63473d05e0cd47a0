package reporting

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidRecord is returned when input cannot be decoded into a
// key/value tree at all. Shape problems inside the tree are never errors.
var ErrInvalidRecord = errors.New("invalid analysis record")

// AnalysisRecord is the read-only snapshot a report is rendered from. Each
// section is nil when the input omitted it or left it empty.
type AnalysisRecord struct {
	Patient    *PatientInfo
	Agents     []AgentStatus
	Symptoms   *SymptomAnalysis
	Treatment  *TreatmentPlan
	Literature *Literature
	Cases      *CaseMatches
	Summary    *ClinicalSummary
}

// PatientInfo identifies the patient and the presenting context.
type PatientInfo struct {
	PatientID        string
	Age              string
	Gender           string
	Urgency          string
	MedicalHistory   string
	Medications      []string
	PrimaryComplaint string
}

// AgentStatus is one upstream agent's completion state.
type AgentStatus struct {
	Name     string
	Status   string
	Progress string
}

// SymptomAnalysis carries the ranked differential diagnoses.
type SymptomAnalysis struct {
	RiskLevel     string
	Differentials []Differential
	Disclaimer    string
}

// Differential is one candidate diagnosis.
type Differential struct {
	Name      string
	ICD10Code string
	Rationale string
}

// TreatmentPlan lists suggested interventions.
type TreatmentPlan struct {
	Treatments []Treatment
	Disclaimer string
}

// Treatment is a single intervention. Type "drug" marks pharmacological
// entries; anything else is non-pharmacological.
type Treatment struct {
	Type      string
	Name      string
	Class     string
	Rationale string
	Source    string
}

// IsDrug reports whether t is a pharmacological intervention.
func (t Treatment) IsDrug() bool { return t.Type == "drug" }

// Literature holds article summaries.
type Literature struct {
	Articles []Article
}

// Article is one summarised reference.
type Article struct {
	Title   string
	PMID    string
	Summary string
}

// CaseMatches holds similar historical cases.
type CaseMatches struct {
	Cases []MatchedCase
}

// MatchedCase is one similar case.
type MatchedCase struct {
	Name        string
	ICDCode     string
	Description string
}

// ClinicalSummary is the closing narrative and follow-up list.
type ClinicalSummary struct {
	PatientSummary  string
	ClinicalSummary string
	Recommendations []Recommendation
}

// Recommendation is a typed follow-up item.
type Recommendation struct {
	Type    string
	Content string
}

// NextSteps returns the content of every "next_steps" recommendation.
func (s *ClinicalSummary) NextSteps() []string {
	var out []string
	for _, r := range s.Recommendations {
		if r.Type == "next_steps" {
			out = append(out, r.Content)
		}
	}
	return out
}

// Sections names the sections present in the record, in render order.
func (r *AnalysisRecord) Sections() []string {
	var out []string
	if r.Patient != nil {
		out = append(out, "patient_info")
	}
	if len(r.Agents) > 0 {
		out = append(out, "agents")
	}
	if r.Symptoms != nil {
		out = append(out, "symptom_analysis")
	}
	if r.Treatment != nil {
		out = append(out, "treatment")
	}
	if r.Literature != nil {
		out = append(out, "literature")
	}
	if r.Cases != nil {
		out = append(out, "case_matcher")
	}
	if r.Summary != nil {
		out = append(out, "summary")
	}
	return out
}

// IsEmpty reports whether no section would render.
func (r *AnalysisRecord) IsEmpty() bool {
	return len(r.Sections()) == 0
}

// ParseJSON decodes a JSON object into a record. Numbers keep their literal
// form so "45" and 45 render identically.
func ParseJSON(data []byte) (*AnalysisRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return NewRecord(raw), nil
}

// ParseYAML decodes a YAML mapping into a record.
func ParseYAML(data []byte) (*AnalysisRecord, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return NewRecord(raw), nil
}

// NewRecord builds a record from an already decoded tree. It never fails:
// missing subtrees become nil sections and odd leaves are stringified.
func NewRecord(raw map[string]any) *AnalysisRecord {
	root := node{raw}
	return &AnalysisRecord{
		Patient:    decodePatient(root.get("patient_info")),
		Agents:     decodeAgents(root.first("agent_summary", "agents")),
		Symptoms:   decodeSymptoms(root.get("symptom_analysis")),
		Treatment:  decodeTreatment(root.get("treatment")),
		Literature: decodeLiterature(root.get("literature")),
		Cases:      decodeCases(root.get("case_matcher")),
		Summary:    decodeSummary(root.get("summary")),
	}
}

func decodePatient(n node) *PatientInfo {
	if n.empty() || !n.isMap() {
		return nil
	}
	return &PatientInfo{
		PatientID:        n.get("patientId").strOr("N/A"),
		Age:              n.get("age").strOr("N/A"),
		Gender:           n.get("gender").strOr("N/A"),
		Urgency:          n.get("urgency").strOr("N/A"),
		MedicalHistory:   n.first("medicalHistory", "history").str(),
		Medications:      n.get("currentMedications").strings(),
		PrimaryComplaint: n.first("primary_complaint", "symptoms").str(),
	}
}

func decodeAgents(n node) []AgentStatus {
	var out []AgentStatus
	for _, a := range n.list() {
		if !a.isMap() {
			if name := strings.TrimSpace(a.str()); name != "" {
				out = append(out, AgentStatus{Name: name, Status: "COMPLETED", Progress: "100"})
			}
			continue
		}
		out = append(out, AgentStatus{
			Name:     a.get("name").strOr("Agent"),
			Status:   a.get("status").strOr("COMPLETED"),
			Progress: a.get("progress").strOr("100"),
		})
	}
	return out
}

func decodeSymptoms(n node) *SymptomAnalysis {
	if n.empty() || !n.isMap() {
		return nil
	}
	s := &SymptomAnalysis{
		RiskLevel:  strings.ToLower(strings.TrimSpace(n.get("risk_level").strOr("medium"))),
		Disclaimer: n.get("disclaimer").str(),
	}
	for _, d := range n.get("top_differentials").list() {
		if !d.isMap() {
			s.Differentials = append(s.Differentials, Differential{Name: d.strOr("Unknown"), ICD10Code: "N/A"})
			continue
		}
		s.Differentials = append(s.Differentials, Differential{
			Name:      d.get("name").strOr("Unknown"),
			ICD10Code: d.get("icd10cm_code").strOr("N/A"),
			Rationale: d.get("rationale").str(),
		})
	}
	return s
}

func decodeTreatment(n node) *TreatmentPlan {
	if n.empty() || !n.isMap() {
		return nil
	}
	t := &TreatmentPlan{Disclaimer: n.get("disclaimer").str()}
	for _, e := range n.get("treatments").list() {
		if !e.isMap() {
			t.Treatments = append(t.Treatments, Treatment{Name: e.strOr("-")})
			continue
		}
		t.Treatments = append(t.Treatments, Treatment{
			Type:      strings.TrimSpace(e.get("type").str()),
			Name:      e.get("name").strOr("-"),
			Class:     e.get("class").strOr("N/A"),
			Rationale: e.get("rationale").str(),
			Source:    e.get("source").str(),
		})
	}
	return t
}

func decodeLiterature(n node) *Literature {
	if n.empty() || !n.isMap() {
		return nil
	}
	l := &Literature{}
	arts := n.get("articles")
	if !arts.isMap() {
		return l
	}
	for _, a := range arts.get("summaries").list() {
		if !a.isMap() {
			l.Articles = append(l.Articles, Article{Title: "No title", Summary: a.str()})
			continue
		}
		l.Articles = append(l.Articles, Article{
			Title:   a.get("title").strOr("No title"),
			PMID:    a.get("pmid").str(),
			Summary: a.get("summary").str(),
		})
	}
	return l
}

func decodeCases(n node) *CaseMatches {
	if n.empty() || !n.isMap() {
		return nil
	}
	var cases []MatchedCase
	for _, c := range n.get("matched_cases").list() {
		if !c.isMap() {
			cases = append(cases, MatchedCase{Name: c.strOr("Unknown"), ICDCode: "N/A"})
			continue
		}
		cases = append(cases, MatchedCase{
			Name:        c.get("name").strOr("Unknown"),
			ICDCode:     c.get("icd_code").strOr("N/A"),
			Description: c.get("description").str(),
		})
	}
	if len(cases) == 0 {
		return nil
	}
	return &CaseMatches{Cases: cases}
}

func decodeSummary(n node) *ClinicalSummary {
	if n.empty() || !n.isMap() {
		return nil
	}
	s := &ClinicalSummary{
		PatientSummary:  n.get("patient_summary").str(),
		ClinicalSummary: n.get("clinical_summary").str(),
	}
	for _, r := range n.get("recommendations").list() {
		if !r.isMap() {
			continue
		}
		s.Recommendations = append(s.Recommendations, Recommendation{
			Type:    strings.TrimSpace(r.get("type").str()),
			Content: r.get("content").str(),
		})
	}
	return s
}
