package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryTerms(t *testing.T) {
	assert.Equal(t, []string{"уютн", "кофе"}, QueryTerms("Хочу найти уютную кофейню, уютное место!"))
	assert.Empty(t, QueryTerms("и в на"))
	assert.Empty(t, QueryTerms(""))
}

func TestHighlight(t *testing.T) {
	mark := func(s string) string { return "[" + s + "]" }
	terms := QueryTerms("уютная кофейня")

	tests := []struct {
		name string
		text string
		want string
	}{
		{"inflected forms", "Очень уютно, лучшая кофейня района", "Очень [уютно], лучшая [кофейня] района"},
		{"punctuation stays outside", "(Кофейня) отличная!", "([Кофейня]) отличная!"},
		{"no match", "Грубый официант", "Грубый официант"},
		{"whitespace collapsed", "уютная   \n кофейня", "[уютная] [кофейня]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Highlight(tt.text, terms, mark))
		})
	}

	assert.Equal(t, "без терминов", Highlight("без  терминов", nil, mark))
}
