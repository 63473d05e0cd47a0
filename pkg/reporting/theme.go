package reporting

// Color scheme - clinical blue theme
var (
	colorBrand         = [3]int{25, 118, 210}  // Banner blue
	colorInk           = [3]int{28, 28, 30}    // Main text
	colorMuted         = [3]int{95, 104, 112}  // Labels
	colorLine          = [3]int{215, 220, 225} // Borders and rules
	colorChip          = [3]int{242, 245, 250} // Chip background
	colorChipText      = [3]int{40, 55, 80}    // Chip text
	colorOK            = [3]int{76, 175, 80}   // Green
	colorWarn          = [3]int{255, 193, 7}   // Amber
	colorBad           = [3]int{244, 67, 54}   // Red
	colorWatermark     = [3]int{225, 228, 232} // Watermark title
	colorWatermarkSub  = [3]int{130, 138, 145} // Watermark subtitle
	colorSectionFill   = [3]int{236, 239, 244}
	colorSectionBorder = [3]int{180, 190, 210}
	colorSectionText   = [3]int{30, 58, 138}
	colorSource        = [3]int{100, 100, 100}
	colorFooterText    = [3]int{140, 140, 140}
	colorWhite         = [3]int{255, 255, 255}
)

const fontFamily = "Arial"

// Minimum footprints passed to EnsureSpace so a header or card never sits
// alone at the bottom of a page. sectionBarHeight is the title bar plus the
// gap below it.
const (
	sectionBarHeight = 10.0
	cardMinHeight    = 35.0
	rowMinHeight     = 12.0
)

// Layout holds page geometry and typographic rhythm, all in millimetres.
type Layout struct {
	PageSize      string
	MarginLeft    float64
	MarginTop     float64
	MarginRight   float64
	BottomReserve float64 // distance from page bottom to the break trigger
	BannerHeight  float64
	ContentTop    float64 // cursor position after the banner on every page
	LineHeight    float64
	RowGap        float64
	CellPadding   float64
	LabelWidth    float64
}

// DefaultLayout returns the A4 layout used for every report.
func DefaultLayout() Layout {
	return Layout{
		PageSize:      "A4",
		MarginLeft:    16,
		MarginTop:     18,
		MarginRight:   16,
		BottomReserve: 20,
		BannerHeight:  24,
		ContentTop:    28,
		LineHeight:    5,
		RowGap:        2,
		CellPadding:   1,
		LabelWidth:    40,
	}
}

// Font is a face/size pair. Style is "", "B" or "I".
type Font struct {
	Style string
	Size  float64
}

var (
	fontBody      = Font{"", 10}
	fontBodyBold  = Font{"B", 10}
	fontSmall     = Font{"", 9}
	fontSmallBold = Font{"B", 9}
	fontTiny      = Font{"", 8}
	fontHeading   = Font{"B", 11}
)
