package reporting

// Card is an open bordered region. Its height depends on how the content
// inside it wraps, so nothing is drawn until CloseCard measures it.
type Card struct {
	Page int
	Y    float64
}

// OpenCard reserves the card's minimum footprint and captures the anchor.
func (d *Document) OpenCard() Card {
	d.EnsureSpace(cardMinHeight)
	return Card{Page: d.Page(), Y: d.Y()}
}

// CloseCard pads the content, then draws the border around everything
// emitted since OpenCard. A card that stayed on one page gets exactly one
// rectangle of height end_y - start_y. A card whose content flowed onto later
// pages gets one segment per page: anchor to break point, content top to
// break point, and content top to the final cursor. The drawn rectangles are
// returned in page order.
func (d *Document) CloseCard(card Card, pad float64) []Rect {
	d.gap(pad)
	endPage, endY := d.Page(), d.Y()

	x, w := d.layout.MarginLeft, d.ContentWidth()
	rects := make([]Rect, 0, endPage-card.Page+1)
	for p := card.Page; p <= endPage; p++ {
		top := d.layout.ContentTop
		if p == card.Page {
			top = card.Y
		}
		bottom := endY
		if p != endPage {
			bottom = d.breaks[p]
		}
		rects = append(rects, Rect{Page: p, X: x, Y: top, W: w, H: bottom - top})
	}

	for _, r := range rects {
		if r.Page != endPage {
			d.c.SetPage(r.Page)
		}
		d.setDrawColor(colorLine)
		d.c.SetLineWidth(0.2)
		d.c.Rect(r.X, r.Y, r.W, r.H, "D")
		if r.Page != endPage {
			d.c.SetPage(endPage)
		}
	}
	d.moveTo(x, endY)
	d.gap(1)
	return rects
}
