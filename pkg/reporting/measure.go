package reporting

import "strings"

// WrapLines breaks text into the lines a width-bounded cell shows with font f
// active. Explicit line breaks always start a new line and an empty segment
// still occupies one line. Words are accumulated greedily while the rendered
// width stays within width; a word wider than width on its own is kept whole
// on a line of its own.
//
// Every renderer in this package draws exactly the lines returned here, which
// is what keeps LinesNeeded and the drawn output in agreement.
func WrapLines(c Canvas, f Font, width float64, text string) []string {
	segments := strings.Split(text, "\n")
	if width <= 0 {
		return []string{strings.Join(strings.Fields(text), " ")}
	}
	c.SetFont(fontFamily, f.Style, f.Size)

	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		words := strings.Fields(seg)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := ""
		for _, w := range words {
			if cur == "" {
				cur = w
				continue
			}
			candidate := cur + " " + w
			if c.GetStringWidth(candidate) <= width {
				cur = candidate
				continue
			}
			lines = append(lines, cur)
			cur = w
		}
		lines = append(lines, cur)
	}
	return lines
}

// LinesNeeded reports how many lines text occupies at width with font f.
// The result is always at least 1.
func LinesNeeded(c Canvas, f Font, width float64, text string) int {
	if n := len(WrapLines(c, f, width, text)); n > 0 {
		return n
	}
	return 1
}
