package reporting

// Line draws a single-line cell spanning the content width and moves the
// cursor below it.
func (d *Document) Line(f Font, h float64, s string) {
	d.LineIndented(f, h, 0, s)
}

// LineIndented is Line starting indent millimetres in from the left margin.
func (d *Document) LineIndented(f Font, h, indent float64, s string) {
	d.EnsureSpace(h)
	d.setFont(f)
	d.moveTo(d.layout.MarginLeft+indent, d.Y())
	d.c.CellFormat(d.ContentWidth()-indent, h, d.text(s), "", 1, "L", false, 0, "")
	d.moveTo(d.layout.MarginLeft, d.Y())
}

// Paragraph wraps s at the content width minus indent and draws it line by
// line, breaking pages between lines when it runs out of room. It returns
// the number of lines drawn, which always equals LinesNeeded for the same
// input.
func (d *Document) Paragraph(f Font, lineH, indent float64, s string) int {
	cellW := d.ContentWidth() - indent
	lines := WrapLines(d.c, f, d.textWidth(cellW), d.text(s))
	for _, line := range lines {
		d.EnsureSpace(lineH)
		d.setFont(f)
		d.moveTo(d.layout.MarginLeft+indent, d.Y())
		d.c.CellFormat(cellW, lineH, line, "", 1, "L", false, 0, "")
	}
	d.moveTo(d.layout.MarginLeft, d.Y())
	return len(lines)
}

// textWidth is the room left for glyphs inside a cell of width w once the
// cell padding on both sides is taken out.
func (d *Document) textWidth(w float64) float64 {
	return w - 2*d.layout.CellPadding
}

// BulletList draws each item as an indented "- item" paragraph followed by
// one row gap.
func (d *Document) BulletList(items []string, indent float64, f Font) {
	for _, it := range items {
		d.Paragraph(f, d.layout.LineHeight, indent, "- "+it)
	}
	d.gap(d.layout.RowGap)
}

// RowOptions tunes KVRow.
type RowOptions struct {
	LabelWidth float64
	Font       Font
	Divider    bool
}

// KVRow draws a label/value row. The label is one bold line in a fixed-width
// cell that spans the full row height, so its baseline lines up with a value
// that wraps onto several lines. It returns the row height,
// max(LineHeight, lines(value) * LineHeight).
func (d *Document) KVRow(label, value string, opts RowOptions) float64 {
	if opts.LabelWidth <= 0 {
		opts.LabelWidth = d.layout.LabelWidth
	}
	if opts.Font.Size == 0 {
		opts.Font = fontBody
	}
	lh := d.layout.LineHeight
	valW := d.ContentWidth() - opts.LabelWidth

	valueFont := Font{"", opts.Font.Size}
	lines := WrapLines(d.c, valueFont, d.textWidth(valW), d.text(value))
	rowH := max(lh, float64(len(lines))*lh)

	if rowH > d.pageCapacity() {
		return d.flowRow(label, lines, valW, opts)
	}
	d.EnsureSpace(max(rowMinHeight, rowH))

	x0, y0 := d.layout.MarginLeft, d.Y()

	d.setFont(Font{"B", opts.Font.Size})
	d.setTextColor(colorMuted)
	d.moveTo(x0, y0)
	d.c.CellFormat(opts.LabelWidth, rowH, d.text(label), "", 0, "L", false, 0, "")

	d.setFont(valueFont)
	d.setTextColor(colorInk)
	for i, line := range lines {
		d.moveTo(x0+opts.LabelWidth, y0+float64(i)*lh)
		d.c.CellFormat(valW, lh, line, "", 0, "L", false, 0, "")
	}

	if opts.Divider {
		d.setDrawColor(colorLine)
		d.c.Line(x0, y0+rowH, x0+d.ContentWidth(), y0+rowH)
	}

	d.moveTo(x0, y0+rowH)
	d.gap(d.layout.RowGap)
	return rowH
}

// rowFootprint is the space KVRow reserves before drawing a default row
// holding value.
func (d *Document) rowFootprint(value string) float64 {
	valW := d.ContentWidth() - d.layout.LabelWidth
	rowH := float64(LinesNeeded(d.c, fontBody, d.textWidth(valW), d.text(value))) * d.layout.LineHeight
	if rowH > d.pageCapacity() {
		return rowMinHeight
	}
	return max(rowMinHeight, rowH)
}

// flowRow handles a value too tall for any single page: the label goes on
// the first line and the value lines flow across page breaks.
func (d *Document) flowRow(label string, lines []string, valW float64, opts RowOptions) float64 {
	lh := d.layout.LineHeight
	d.EnsureSpace(rowMinHeight)
	x0 := d.layout.MarginLeft

	d.setFont(Font{"B", opts.Font.Size})
	d.setTextColor(colorMuted)
	d.moveTo(x0, d.Y())
	d.c.CellFormat(opts.LabelWidth, lh, d.text(label), "", 0, "L", false, 0, "")

	d.setTextColor(colorInk)
	for _, line := range lines {
		d.EnsureSpace(lh)
		d.setFont(Font{"", opts.Font.Size})
		d.moveTo(x0+opts.LabelWidth, d.Y())
		d.c.CellFormat(valW, lh, line, "", 1, "L", false, 0, "")
	}
	d.moveTo(x0, d.Y())
	d.gap(d.layout.RowGap)
	return float64(len(lines)) * lh
}

// Section draws a filled title bar. next is the minimum footprint of the
// block's first element; the bar and that element always share a page.
func (d *Document) Section(title string, next float64) {
	d.EnsureSpace(sectionBarHeight + next)
	y := d.Y()
	d.setFillColor(colorSectionFill)
	d.setDrawColor(colorSectionBorder)
	d.c.SetLineWidth(0.2)
	d.c.Rect(d.layout.MarginLeft, y, d.ContentWidth(), 8, "DF")

	d.setFont(fontHeading)
	d.setTextColor(colorSectionText)
	d.moveTo(d.layout.MarginLeft+2, y+2)
	d.c.CellFormat(0, 4, d.text(title), "", 0, "L", false, 0, "")

	d.moveTo(d.layout.MarginLeft, y+8)
	d.gap(sectionBarHeight - 8)
	d.setTextColor(colorInk)
}

// Heading draws a bold single-line sub heading, kept on the same page as
// the next height millimetres of content that follow it.
func (d *Document) Heading(f Font, h float64, s string, next float64) {
	d.EnsureSpace(h + next)
	d.setTextColor(colorInk)
	d.Line(f, h, s)
}

// riskScale is the fixed confidence proxy shown for each risk level. It is
// not a probability reported by the analysis.
var riskScale = map[string]struct {
	pct   string
	color [3]int
}{
	"low":    {"50", colorOK},
	"medium": {"70", colorWarn},
	"high":   {"85", colorBad},
}

// confidenceFor resolves a risk label to its proxy percentage and pill
// colour. Unknown labels show the medium percentage in the low colour.
func confidenceFor(risk string) (string, [3]int) {
	if r, ok := riskScale[risk]; ok {
		return r.pct, r.color
	}
	return riskScale["medium"].pct, colorOK
}

const pillHeight = 6.0

// PctPill draws the right-aligned "NN% LEVEL" confidence marker.
func (d *Document) PctPill(pct, label string, color [3]int) {
	d.EnsureSpace(pillHeight)
	d.setFont(Font{"B", 12})
	d.setTextColor(color)
	d.moveTo(d.layout.MarginLeft, d.Y())
	d.c.CellFormat(d.ContentWidth(), pillHeight, d.text(pctText(pct)+" "+label), "", 1, "R", false, 0, "")
	d.setTextColor(colorInk)
}

// Note draws a muted italic paragraph, used for disclaimers.
func (d *Document) Note(s string) {
	d.setTextColor(colorMuted)
	d.Paragraph(Font{"I", 8}, 4, 0, s)
	d.setTextColor(colorInk)
}
