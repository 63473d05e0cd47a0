package reporting

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSafeText_ChunksLongTokens(t *testing.T) {
	tok := strings.Repeat("a", 130)
	got := SafeText(tok)

	parts := strings.Split(got, " ")
	assert.Equal(t, []int{60, 60, 10}, []int{len(parts[0]), len(parts[1]), len(parts[2])})
	assert.Equal(t, tok, strings.Join(parts, ""))
}

func TestSafeText_LeavesShortTextAlone(t *testing.T) {
	assert.Equal(t, "hello world", SafeText("hello   world"))
	assert.Equal(t, "", SafeText(""))
}

func TestSafeText_KeepsLineBreaks(t *testing.T) {
	got := SafeText("first line\n\nthird " + strings.Repeat("x", 61))
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), got)
	}
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "third "+strings.Repeat("x", 60)+" x", lines[2])
}

func TestChunkToken_CountsRunes(t *testing.T) {
	tok := strings.Repeat("é", 65)
	chunks := ChunkToken(tok, 60)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	assert.Equal(t, 60, utf8.RuneCountInString(chunks[0]))
	assert.Equal(t, 5, utf8.RuneCountInString(chunks[1]))
}

func TestChunkToken_NonPositiveSize(t *testing.T) {
	assert.Equal(t, []string{"abc"}, ChunkToken("abc", 0))
}

func TestPctText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"100", "100%"},
		{"40.6", "41%"},
		{"85%", "85%"},
		{"-5", "0%"},
		{"250", "100%"},
		{"n/a", "0%"},
		{"", "0%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pctText(tt.in), "input %q", tt.in)
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Female", titleCase("FEMALE"))
	assert.Equal(t, "Non Binary", titleCase("non binary"))
	assert.Equal(t, "Élan", titleCase("élan"))
	assert.Equal(t, "", titleCase(""))
}
