package reporting

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// WorkupPanel is a named list of recommended tests, selected when any of its
// keywords occurs in the primary diagnosis name.
type WorkupPanel struct {
	Name     string   `toml:"name"`
	Keywords []string `toml:"keywords"`
	Tests    []string `toml:"tests"`
}

// WorkupCatalog is an ordered list of panels plus the fallback used when no
// panel matches. Order matters: the first matching panel wins.
type WorkupCatalog struct {
	Panels   []WorkupPanel `toml:"panel"`
	Fallback WorkupPanel   `toml:"fallback"`
}

// DefaultWorkupCatalog returns the built-in panels.
func DefaultWorkupCatalog() *WorkupCatalog {
	return &WorkupCatalog{
		Panels: []WorkupPanel{
			{
				Name:     "endocrine-gi",
				Keywords: []string{"diabetes", "gastroparesis"},
				Tests: []string{
					"Fasting Blood Glucose (FBG)",
					"HbA1c (long-term glycemic control)",
					"Gastric emptying study if gastroparesis suspected",
					"Upper GI endoscopy to rule out obstruction",
					"CBC and CMP baseline",
				},
			},
			{
				Name:     "cardiac",
				Keywords: []string{"cardiac", "myocardial", "coronary", "acs"},
				Tests: []string{
					"12-lead ECG",
					"High-sensitivity troponin",
					"Chest X-ray",
					"Echocardiogram",
					"Fasting lipid profile",
				},
			},
			{
				Name:     "neuro",
				Keywords: []string{"migraine", "headache"},
				Tests: []string{
					"Focused neurological examination",
					"CT/MRI brain if red flags",
					"Blood pressure trend",
					"Vision assessment",
				},
			},
		},
		Fallback: WorkupPanel{
			Name: "general",
			Tests: []string{
				"CBC, CMP baseline",
				"Urinalysis",
				"Condition-specific imaging/labs per clinical picture",
			},
		},
	}
}

// Lookup returns the first panel with a keyword contained in the lowercased
// diagnosis, or the fallback.
func (c *WorkupCatalog) Lookup(diagnosis string) WorkupPanel {
	dx := strings.ToLower(diagnosis)
	for _, p := range c.Panels {
		for _, k := range p.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k != "" && strings.Contains(dx, k) {
				return p
			}
		}
	}
	return c.Fallback
}

// Validate rejects catalogs that would render an empty workup.
func (c *WorkupCatalog) Validate() error {
	if len(c.Fallback.Tests) == 0 {
		return fmt.Errorf("workup catalog: fallback panel has no tests")
	}
	for i, p := range c.Panels {
		if len(p.Keywords) == 0 {
			return fmt.Errorf("workup catalog: panel %d (%q) has no keywords", i, p.Name)
		}
		if len(p.Tests) == 0 {
			return fmt.Errorf("workup catalog: panel %d (%q) has no tests", i, p.Name)
		}
	}
	return nil
}

// ParseWorkupCatalog decodes a TOML catalog:
//
//	[[panel]]
//	name = "renal"
//	keywords = ["kidney", "renal"]
//	tests = ["eGFR", "Urine albumin-creatinine ratio"]
//
//	[fallback]
//	tests = ["CBC, CMP baseline"]
func ParseWorkupCatalog(data string) (*WorkupCatalog, error) {
	var c WorkupCatalog
	if _, err := toml.Decode(data, &c); err != nil {
		return nil, fmt.Errorf("decode workup catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadWorkupCatalog reads a TOML catalog from disk.
func LoadWorkupCatalog(path string) (*WorkupCatalog, error) {
	var c WorkupCatalog
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("load workup catalog %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
