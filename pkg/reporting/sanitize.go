package reporting

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxTokenLen bounds every whitespace-delimited token that reaches the
// wrapper, so the greedy line breaker always makes progress.
const maxTokenLen = 60

// SafeText collapses text into a form the measurer and wrapper can handle:
// tokens longer than maxTokenLen are split into maxTokenLen-sized chunks
// joined by spaces. Explicit line breaks are kept.
func SafeText(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = chunkLine(line)
	}
	return strings.Join(lines, "\n")
}

func chunkLine(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	out := make([]string, 0, len(fields))
	for _, tok := range fields {
		if utf8.RuneCountInString(tok) <= maxTokenLen {
			out = append(out, tok)
			continue
		}
		out = append(out, ChunkToken(tok, maxTokenLen)...)
	}
	return strings.Join(out, " ")
}

// ChunkToken splits tok into pieces of at most size characters.
func ChunkToken(tok string, size int) []string {
	runes := []rune(tok)
	if size <= 0 || len(runes) <= size {
		return []string{tok}
	}
	chunks := make([]string, 0, len(runes)/size+1)
	for len(runes) > size {
		chunks = append(chunks, string(runes[:size]))
		runes = runes[size:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

// pctText formats a progress or confidence value as a whole percentage,
// clamped to 0..100. Unparseable input renders as 0%.
func pctText(raw string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%")), 64)
	if err != nil || math.IsNaN(f) {
		return "0%"
	}
	f = math.Max(0, math.Min(100, f))
	return fmt.Sprintf("%.0f%%", f)
}

// titleCase upper-cases the first letter of every word and lower-cases the
// rest.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
