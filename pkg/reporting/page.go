package reporting

import "fmt"

const (
	reportTitle       = "MedsAI Diagnostic Report"
	reportSubtitle    = "Comprehensive AI-Driven Medical Analysis"
	reportAuthor      = "MedsAI System"
	watermarkTitle    = "MedsAI"
	watermarkSubtitle = "AI-Powered Clinical Decision Support"
	footerCredit      = "Generated by MedsAI Diagnostic System"

	// fpdf substitutes the final page count for this token when the
	// document is closed.
	totalPagesAlias = "{nb}"

	watermarkFraction = 0.45
)

// Document is one render's page state: the canvas, the cursor it owns and
// the y position at which each finished page was broken. A Document is never
// shared between renders.
type Document struct {
	c         Canvas
	layout    Layout
	generated string
	tr        func(string) string

	pageW, pageH float64
	breaks       map[int]float64
	textColor    [3]int
}

func newDocument(c Canvas, layout Layout, generated string) *Document {
	w, h := c.GetPageSize()
	return &Document{
		c:         c,
		layout:    layout,
		generated: generated,
		tr:        c.UnicodeTranslatorFromDescriptor(""),
		pageW:     w,
		pageH:     h,
		breaks:    make(map[int]float64),
		textColor: colorInk,
	}
}

// text sanitizes s and maps it onto the core-font code page. Everything that
// is measured or drawn passes through here exactly once.
func (d *Document) text(s string) string {
	return d.tr(SafeText(s))
}

// Y returns the cursor's vertical position on the current page.
func (d *Document) Y() float64 { return d.c.GetY() }

// Page returns the current page number.
func (d *Document) Page() int { return d.c.PageNo() }

// BreakTrigger is the lowest y content may reach before a new page starts.
func (d *Document) BreakTrigger() float64 {
	return d.pageH - d.layout.BottomReserve
}

// Remaining is the vertical space left above the break trigger.
func (d *Document) Remaining() float64 {
	return d.BreakTrigger() - d.Y()
}

// ContentWidth is the page width between the side margins.
func (d *Document) ContentWidth() float64 {
	return d.pageW - d.layout.MarginLeft - d.layout.MarginRight
}

// pageCapacity is the content height available on a freshly opened page.
func (d *Document) pageCapacity() float64 {
	return d.BreakTrigger() - d.layout.ContentTop
}

// EnsureSpace starts a new page when needed would cross the break trigger.
// It reports whether a page was added. A page that is still empty is never
// abandoned, so a request larger than a whole page cannot loop.
func (d *Document) EnsureSpace(needed float64) bool {
	if d.Y()+needed <= d.BreakTrigger() {
		return false
	}
	if d.Y() <= d.layout.ContentTop {
		return false
	}
	d.breaks[d.Page()] = d.Y()
	d.newPage()
	return true
}

// newPage opens a page, decorates it and parks the cursor at the content top.
// The text colour in effect before the break carries over, so a paragraph
// that flows onto the new page keeps its colour.
func (d *Document) newPage() {
	color := d.textColor
	d.c.AddPage()
	d.drawBanner()
	d.drawWatermark()
	d.setTextColor(color)
	d.moveTo(d.layout.MarginLeft, d.layout.ContentTop)
}

func (d *Document) moveTo(x, y float64) {
	d.c.SetXY(x, y)
}

// advance moves the cursor down by h and back to the left margin.
func (d *Document) advance(h float64) {
	d.moveTo(d.layout.MarginLeft, d.Y()+h)
}

// gap adds vertical whitespace without ever pushing the cursor past the
// break trigger.
func (d *Document) gap(h float64) {
	d.advance(max(0, min(h, d.Remaining())))
}

func (d *Document) setFont(f Font) {
	d.c.SetFont(fontFamily, f.Style, f.Size)
}

func (d *Document) setTextColor(c [3]int) {
	d.textColor = c
	d.c.SetTextColor(c[0], c[1], c[2])
}

func (d *Document) setFillColor(c [3]int) { d.c.SetFillColor(c[0], c[1], c[2]) }
func (d *Document) setDrawColor(c [3]int) { d.c.SetDrawColor(c[0], c[1], c[2]) }

// drawBanner paints the full-width title band at the top of the page.
func (d *Document) drawBanner() {
	d.setFillColor(colorBrand)
	d.c.Rect(0, 0, d.pageW, d.layout.BannerHeight, "F")

	d.setTextColor(colorWhite)
	d.moveTo(d.layout.MarginLeft, 5)
	d.setFont(Font{"B", 15})
	d.c.CellFormat(0, 7, reportTitle, "", 1, "C", false, 0, "")
	d.setFont(Font{"", 9})
	d.c.CellFormat(0, 5, reportSubtitle, "", 1, "C", false, 0, "")
	d.c.CellFormat(0, 5, "Generated: "+d.generated, "", 1, "C", false, 0, "")
	d.setTextColor(colorInk)
}

// drawWatermark stamps the centred brand mark. It runs at page open, before
// any content, so it sits behind everything else on the page.
func (d *Document) drawWatermark() {
	d.setTextColor(colorWatermark)
	d.setFont(Font{"B", 46})
	w := d.c.GetStringWidth(watermarkTitle)
	d.moveTo((d.pageW-w)/2, d.pageH*watermarkFraction)
	d.c.CellFormat(w, 12, watermarkTitle, "", 1, "C", false, 0, "")

	d.setTextColor(colorWatermarkSub)
	d.setFont(Font{"", 11})
	ws := d.c.GetStringWidth(watermarkSubtitle)
	d.moveTo((d.pageW-ws)/2, d.pageH*watermarkFraction+12)
	d.c.CellFormat(ws, 6, watermarkSubtitle, "", 1, "C", false, 0, "")
	d.setTextColor(colorInk)
}

// drawFooter runs as each page is closed. The total page count is written
// as an alias that the encoder patches once the document is complete.
func (d *Document) drawFooter() {
	y := d.pageH - 18
	d.setDrawColor(colorLine)
	d.c.SetLineWidth(0.2)
	d.c.Line(d.layout.MarginLeft, y, d.pageW-d.layout.MarginRight, y)

	d.moveTo(d.layout.MarginLeft, y+2)
	d.setTextColor(colorFooterText)
	d.setFont(Font{"I", 8})
	d.c.CellFormat(0, 5, footerCredit, "", 1, "C", false, 0, "")
	d.setFont(Font{"", 9})
	d.c.CellFormat(0, 5, fmt.Sprintf("Page %d of %s", d.Page(), totalPagesAlias), "", 0, "C", false, 0, "")
	d.setTextColor(colorInk)
}
