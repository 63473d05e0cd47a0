package reporting

const (
	chipsPerRow  = 3
	chipHeight   = 6.0
	chipPadding  = 8.0
	chipGap      = 4.0
	chipRowPitch = 8.0
)

// ChipFlow lays chips out left to right, starting a new row after every
// chipsPerRow chips. It returns the number of rows used, ceil(n/chipsPerRow).
func (d *Document) ChipFlow(labels []string) int {
	if len(labels) == 0 {
		return 0
	}
	rows := 0
	x := d.layout.MarginLeft
	for i, label := range labels {
		if i%chipsPerRow == 0 {
			if i > 0 {
				d.advance(chipRowPitch)
			}
			d.EnsureSpace(chipRowPitch)
			x = d.layout.MarginLeft
			rows++
		}
		x += d.chip(x, label) + chipGap
	}
	d.advance(chipHeight)
	d.gap(chipRowPitch - chipHeight)
	return rows
}

// maxChipWidth is the widest a chip may be while a full row still fits
// between the margins.
func (d *Document) maxChipWidth() float64 {
	return (d.ContentWidth() - (chipsPerRow-1)*chipGap) / chipsPerRow
}

// chip draws one bordered pill at x on the current row and returns its width.
// Labels too wide for maxChipWidth are cut and end in "...".
func (d *Document) chip(x float64, label string) float64 {
	d.setFont(Font{"B", 9})
	txt := d.fitText(d.text(label), d.maxChipWidth()-chipPadding)
	w := d.c.GetStringWidth(txt) + chipPadding

	d.setFillColor(colorChip)
	d.setDrawColor(colorLine)
	d.setTextColor(colorChipText)
	d.moveTo(x, d.Y())
	d.c.CellFormat(w, chipHeight, txt, "1", 0, "C", true, 0, "")
	d.setTextColor(colorInk)
	return w
}

// fitText shortens s rune by rune until it renders within width in the
// current font.
func (d *Document) fitText(s string, width float64) string {
	if d.c.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		if cut := string(r) + "..."; d.c.GetStringWidth(cut) <= width {
			return cut
		}
	}
	return ""
}
