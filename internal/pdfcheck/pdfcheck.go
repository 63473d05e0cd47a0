// Package pdfcheck re-reads encoded reports: structural validation and
// page count through pdfcpu, plain text through ledongthuc/pdf.
package pdfcheck

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrInvalidPDF is returned when the bytes do not parse as a valid PDF.
var ErrInvalidPDF = errors.New("invalid PDF")

// Report summarizes a checked document.
type Report struct {
	Pages int
	Text  []string // one entry per page
}

// Validate parses and validates data and returns its page count.
func Validate(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: empty document", ErrInvalidPDF)
	}
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	return ctx.PageCount, nil
}

// ExtractText returns the plain text of each page. Pages without a page
// object yield an empty string.
func ExtractText(data []byte) ([]string, error) {
	r, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract text from page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// Inspect validates data and extracts its text. The two readers must agree
// on the page count.
func Inspect(data []byte) (*Report, error) {
	pages, err := Validate(data)
	if err != nil {
		return nil, err
	}
	text, err := ExtractText(data)
	if err != nil {
		return nil, err
	}
	if len(text) != pages {
		return nil, fmt.Errorf("%w: validator saw %d pages, text reader saw %d", ErrInvalidPDF, pages, len(text))
	}
	return &Report{Pages: pages, Text: text}, nil
}

// CheckFooters verifies every page carries "Page i of N" with the right
// total.
func CheckFooters(text []string) error {
	n := len(text)
	for i, page := range text {
		want := fmt.Sprintf("Page %d of %d", i+1, n)
		if !strings.Contains(page, want) {
			return fmt.Errorf("page %d: footer %q not found", i+1, want)
		}
	}
	return nil
}
