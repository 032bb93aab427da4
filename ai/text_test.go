package ai

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "  уютное \n\t место  ", "уютное место"},
		{"nfkc folds compatibility forms", "ｃａｆｅ №１", "cafe No1"},
		{"drops control characters", "кофе\u0007 хороший", "кофе хороший"},
		{"drops invalid utf8", "a\xffb", "ab"},
		{"empty", "", ""},
		{"whitespace only", " \n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "привет", Truncate("привет", 10))
	})

	t.Run("cuts on rune boundary", func(t *testing.T) {
		got := Truncate("абвгдеж", 3)
		assert.Equal(t, "абв", got)
		assert.True(t, utf8.ValidString(got))
	})

	t.Run("trims trailing space at cut", func(t *testing.T) {
		assert.Equal(t, "ab", Truncate("ab cd", 3))
	})

	t.Run("non-positive limit disables truncation", func(t *testing.T) {
		assert.Equal(t, "abc", Truncate("abc", 0))
	})

	t.Run("deterministic", func(t *testing.T) {
		long := strings.Repeat("шашлык ", 1000)
		assert.Equal(t, Truncate(long, 2000), Truncate(long, 2000))
		assert.LessOrEqual(t, utf8.RuneCountInString(Truncate(long, 2000)), 2000)
	})
}

func TestPrepareText(t *testing.T) {
	assert.Equal(t, " ", PrepareText("", 100))
	assert.Equal(t, " ", PrepareText("\n\t", 100))
	assert.Equal(t, "хороший кофе", PrepareText(" хороший   кофе ", 100))

	out := PrepareTexts([]string{"a  b", ""}, 10)
	assert.Equal(t, []string{"a b", " "}, out)
}
