package reporting

import "io"

// Canvas is the subset of *fpdf.Fpdf the layout engine draws with. Every
// primitive receives it through a Document; there is no package-level canvas.
type Canvas interface {
	AddPage()
	SetPage(pageNum int)
	PageNo() int
	PageCount() int
	GetPageSize() (float64, float64)

	SetFont(familyStr, styleStr string, size float64)
	GetStringWidth(s string) float64
	UnicodeTranslatorFromDescriptor(cpStr string) func(string) string

	GetX() float64
	GetY() float64
	SetXY(x, y float64)

	CellFormat(w, h float64, txtStr, borderStr string, ln int, alignStr string, fill bool, link int, linkStr string)
	Rect(x, y, w, h float64, styleStr string)
	Line(x1, y1, x2, y2 float64)
	SetLineWidth(width float64)

	SetFillColor(r, g, b int)
	SetDrawColor(r, g, b int)
	SetTextColor(r, g, b int)

	Ok() bool
	Error() error
	Output(w io.Writer) error
}

// Rect is a drawn rectangle in page coordinates.
type Rect struct {
	Page int
	X, Y float64
	W, H float64
}
