package reporting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCard_SinglePageBorder(t *testing.T) {
	d, rec := newTestDocument(t)
	d.Line(fontBody, 5, "before")
	rec.reset()

	card := d.OpenCard()
	d.Paragraph(fontBody, 5, 0, strings.Repeat("rationale text ", 30))
	rects := d.CloseCard(card, 2)

	require.Len(t, rects, 1)
	require.Len(t, rec.rects, 1, "exactly one border is drawn")
	r := rects[0]
	assert.Equal(t, card.Y, r.Y)
	assert.Equal(t, rec.rects[0], r)
	assert.InDelta(t, d.Y()-1-card.Y, r.H, 1e-9, "height is end_y - start_y")
	assert.Equal(t, d.ContentWidth(), r.W)
}

func TestCard_OpenReservesMinimumHeight(t *testing.T) {
	d, _ := newTestDocument(t)
	d.moveTo(d.layout.MarginLeft, d.BreakTrigger()-cardMinHeight+5)

	card := d.OpenCard()
	assert.Equal(t, 2, card.Page)
	assert.Equal(t, d.layout.ContentTop, card.Y)
}

func TestCard_SpansPages(t *testing.T) {
	d, rec := newTestDocument(t)
	d.moveTo(d.layout.MarginLeft, d.BreakTrigger()-cardMinHeight-1)

	card := d.OpenCard()
	require.Equal(t, 1, card.Page)
	d.Paragraph(fontBody, 5, 0, strings.Repeat("a long rationale that flows across the break ", 40))
	require.Equal(t, 2, d.Page())
	rec.reset()

	rects := d.CloseCard(card, 2)
	require.Len(t, rects, 2)

	first, last := rects[0], rects[1]
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, card.Y, first.Y)
	assert.InDelta(t, d.breaks[1]-card.Y, first.H, 1e-9)

	assert.Equal(t, 2, last.Page)
	assert.Equal(t, d.layout.ContentTop, last.Y)
	assert.Greater(t, last.H, 0.0)

	require.Len(t, rec.rects, 2)
	assert.Equal(t, 1, rec.rects[0].Page, "first segment drawn on the anchor page")
	assert.Equal(t, 2, rec.rects[1].Page)
	assert.Equal(t, 2, d.Page(), "cursor returns to the last page")
}
