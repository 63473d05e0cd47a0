package reporting

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVGenerator_Render(t *testing.T) {
	gen := NewCSVGenerator(WithClock(fixedClock))
	res, err := gen.Render(sampleRecord(t))
	require.NoError(t, err)
	assert.Equal(t, "text/csv", res.ContentType)
	assert.Zero(t, res.Pages)

	rows := readCSV(t, res.Data)
	require.Greater(t, len(rows), 4)
	assert.Equal(t, []string{"# " + reportTitle}, rows[0])
	assert.Equal(t, []string{"# Generated:", "2026-01-02T09:30:00Z"}, rows[1])
	assert.Equal(t, []string{"Section", "Field", "Value"}, rows[2])

	index := map[string]string{}
	for _, row := range rows[3:] {
		require.Len(t, row, 3)
		index[row[0]+"/"+row[1]] = row[2]
	}
	assert.Equal(t, "P-1042", index["patient_info/patient_id"])
	assert.Equal(t, "Lisinopril 10mg", index["patient_info/medication[2]"])
	assert.Equal(t, "RUNNING 41%", index["agents/CaseMatcher"])
	assert.Equal(t, "85%", index["symptom_analysis/confidence"])
	assert.Equal(t, "Diabetic gastroparesis (K31.84)", index["symptom_analysis/differential[1]"])
	assert.Equal(t, "Fasting Blood Glucose (FBG)", index["workup/endocrine-gi[1]"])
	assert.Equal(t, "Metoclopramide", index["treatment/drug[1]"])
	assert.Equal(t, "Small frequent meals", index["treatment/lifestyle[2]"])
	assert.Equal(t, "Gastroparesis in diabetes (PMID 31234567)", index["literature/article[1]"])
	assert.Equal(t, "Review glycemic control in 4 weeks", index["summary/next_step[2]"])
}

func TestCSVGenerator_EmptyRecord(t *testing.T) {
	data, err := NewCSVGenerator(WithClock(fixedClock)).Generate(nil)
	require.NoError(t, err)
	assert.Len(t, readCSV(t, data), 3, "blank separator lines are skipped by the reader")
}

func TestCSVGenerator_LimitsMatchPDF(t *testing.T) {
	rec := &AnalysisRecord{Literature: &Literature{}, Cases: &CaseMatches{}}
	for i := 0; i < 8; i++ {
		rec.Literature.Articles = append(rec.Literature.Articles, Article{Title: "t"})
		rec.Cases.Cases = append(rec.Cases.Cases, MatchedCase{Name: "c", ICDCode: "X"})
	}
	data, err := NewCSVGenerator(WithClock(fixedClock)).Generate(rec)
	require.NoError(t, err)

	counts := map[string]int{}
	for _, row := range readCSV(t, data)[3:] {
		counts[row[0]]++
	}
	assert.Equal(t, maxLiterature, counts["literature"])
	assert.Equal(t, maxCases, counts["case_matcher"])
}

func TestCSVGenerator_WorkupCatalogOption(t *testing.T) {
	catalog, err := ParseWorkupCatalog(`
[[panel]]
name = "gi"
keywords = ["gastroparesis"]
tests = ["Scintigraphy"]
[fallback]
tests = ["CBC"]
`)
	require.NoError(t, err)

	data, err := NewCSVGenerator(WithClock(fixedClock), WithWorkupCatalog(catalog)).Generate(sampleRecord(t))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Scintigraphy")
	assert.NotContains(t, string(data), "HbA1c")
}
