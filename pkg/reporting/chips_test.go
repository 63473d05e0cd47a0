package reporting

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChipFlow_Rows(t *testing.T) {
	tests := []struct {
		n    int
		rows int
	}{
		{0, 0},
		{1, 1},
		{3, 1},
		{4, 2},
		{7, 3},
	}
	for _, tt := range tests {
		d, _ := newTestDocument(t)
		labels := make([]string, tt.n)
		for i := range labels {
			labels[i] = fmt.Sprintf("Agent%d COMPLETED 100%%", i)
		}
		assert.Equal(t, tt.rows, d.ChipFlow(labels), "%d chips", tt.n)
	}
}

func TestChipFlow_SevenChipsLayout(t *testing.T) {
	d, rec := newTestDocument(t)
	labels := []string{"a", "b", "c", "d", "e", "f", "g"}
	require.Equal(t, 3, d.ChipFlow(labels))
	require.Len(t, rec.cells, 7)

	rowY := map[float64]int{}
	for _, c := range rec.cells {
		rowY[c.Y]++
		assert.Equal(t, chipHeight, c.H)
	}
	counts := make([]int, 0, len(rowY))
	for _, y := range []float64{d.layout.ContentTop, d.layout.ContentTop + chipRowPitch, d.layout.ContentTop + 2*chipRowPitch} {
		counts = append(counts, rowY[y])
	}
	assert.Equal(t, []int{3, 3, 1}, counts)

	for _, i := range []int{0, 3, 6} {
		assert.Equal(t, d.layout.MarginLeft, rec.cells[i].X, "chip %d starts a row", i)
	}
	assert.Greater(t, rec.cells[1].X, rec.cells[0].X+rec.cells[0].W)
}

func TestChipFlow_BreaksBetweenRows(t *testing.T) {
	d, rec := newTestDocument(t)
	d.moveTo(d.layout.MarginLeft, d.BreakTrigger()-chipRowPitch-1)

	d.ChipFlow([]string{"chip-1", "chip-2", "chip-3", "chip-4"})
	assert.Equal(t, 2, d.Page())

	chips := rec.cellsWith("chip-4")
	require.Len(t, chips, 1)
	last := chips[0]
	assert.Equal(t, 2, last.Page)
	assert.Equal(t, d.layout.ContentTop, last.Y)
}

func TestChipFlow_LongLabelsStayInsideMargins(t *testing.T) {
	d, rec := newTestDocument(t)
	long := strings.Repeat("ClinicalGuidelineSynthesizer", 3) + " COMPLETED 100%"
	require.Equal(t, 1, d.ChipFlow([]string{long, long, long}))
	require.Len(t, rec.cells, 3)

	right := d.layout.MarginLeft + d.ContentWidth()
	for i, c := range rec.cells {
		assert.LessOrEqual(t, c.X+c.W, right+1e-9, "chip %d", i)
		assert.True(t, strings.HasSuffix(c.Text, "..."), "chip %d is cut", i)
	}
}

func TestChipFlow_ShortLabelsUnchanged(t *testing.T) {
	d, rec := newTestDocument(t)
	d.ChipFlow([]string{"CaseMatcher RUNNING 41%"})
	require.Len(t, rec.cells, 1)
	assert.Equal(t, "CaseMatcher RUNNING 41%", rec.cells[0].Text)
}
