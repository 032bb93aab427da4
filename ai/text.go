package ai

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText applies NFKC normalization, drops invalid UTF-8 and control
// characters, and collapses runs of whitespace into single spaces.
func NormalizeText(text string) string {
	text = strings.ToValidUTF8(text, "")
	text = norm.NFKC.String(text)

	var b strings.Builder
	b.Grow(len(text))
	space := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// Truncate cuts text to at most maxRunes runes. It never splits a rune.
func Truncate(text string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	i := 0
	for pos := range text {
		if i == maxRunes {
			return strings.TrimRightFunc(text[:pos], unicode.IsSpace)
		}
		i++
	}
	return text
}

// PrepareText is the truncation policy shared by every model input:
// normalize, then keep the first maxRunes runes. Text that is empty after
// normalization becomes a single space so that providers always receive a
// non-empty input.
func PrepareText(text string, maxRunes int) string {
	text = Truncate(NormalizeText(text), maxRunes)
	if text == "" {
		return " "
	}
	return text
}

// PrepareTexts applies PrepareText to every element, returning a new slice.
func PrepareTexts(texts []string, maxRunes int) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = PrepareText(t, maxRunes)
	}
	return out
}
