package reporting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkupCatalog_Lookup(t *testing.T) {
	c := DefaultWorkupCatalog()
	tests := []struct {
		diagnosis string
		panel     string
		firstTest string
	}{
		{"Diabetic gastroparesis", "endocrine-gi", "Fasting Blood Glucose (FBG)"},
		{"Type 2 DIABETES mellitus", "endocrine-gi", "Fasting Blood Glucose (FBG)"},
		{"Acute Coronary Syndrome", "cardiac", "12-lead ECG"},
		{"Tension-type headache", "neuro", "Focused neurological examination"},
		{"Chronic migraine", "neuro", "Focused neurological examination"},
		{"Community-acquired pneumonia", "general", "CBC, CMP baseline"},
		{"", "general", "CBC, CMP baseline"},
	}
	for _, tt := range tests {
		p := c.Lookup(tt.diagnosis)
		assert.Equal(t, tt.panel, p.Name, tt.diagnosis)
		require.NotEmpty(t, p.Tests)
		assert.Equal(t, tt.firstTest, p.Tests[0], tt.diagnosis)
	}
}

func TestWorkupCatalog_FirstMatchWins(t *testing.T) {
	c := DefaultWorkupCatalog()
	assert.Equal(t, "endocrine-gi", c.Lookup("diabetes with cardiac autonomic neuropathy").Name)
}

func TestParseWorkupCatalog(t *testing.T) {
	c, err := ParseWorkupCatalog(`
[[panel]]
name = "renal"
keywords = ["kidney", "Renal"]
tests = ["eGFR", "Urine albumin-creatinine ratio"]

[fallback]
name = "general"
tests = ["CBC"]
`)
	require.NoError(t, err)
	assert.Equal(t, "renal", c.Lookup("Chronic kidney disease").Name)
	assert.Equal(t, "renal", c.Lookup("renal colic").Name)
	assert.Equal(t, []string{"CBC"}, c.Lookup("sprain").Tests)
}

func TestParseWorkupCatalog_Invalid(t *testing.T) {
	_, err := ParseWorkupCatalog(`[[panel]]
name = "empty"
tests = ["x"]
[fallback]
tests = ["y"]`)
	assert.ErrorContains(t, err, "no keywords")

	_, err = ParseWorkupCatalog(`[fallback]`)
	assert.ErrorContains(t, err, "fallback panel has no tests")

	_, err = ParseWorkupCatalog(`not toml =`)
	assert.ErrorContains(t, err, "decode workup catalog")
}

func TestLoadWorkupCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workup.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[panel]]
name = "thyroid"
keywords = ["thyroid"]
tests = ["TSH", "Free T4"]

[fallback]
tests = ["CBC"]
`), 0o600))

	c, err := LoadWorkupCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"TSH", "Free T4"}, c.Lookup("Hypothyroidism").Tests)

	_, err = LoadWorkupCatalog(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
