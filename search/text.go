package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Stop words to filter out when picking query terms to highlight.
// Russian and Kazakh function words that carry no venue meaning.
var stopWords = map[string]bool{
	"и": true, "в": true, "во": true, "не": true, "на": true, "с": true,
	"со": true, "что": true, "как": true, "а": true, "но": true, "по": true,
	"к": true, "у": true, "из": true, "за": true, "для": true, "от": true,
	"о": true, "об": true, "до": true, "где": true, "есть": true, "очень": true,
	"хочу": true, "найти": true, "место": true, "мне": true, "или": true,
	"бы": true, "же": true, "ли": true, "это": true, "то": true,
	"және": true, "мен": true, "да": true, "де": true, "үшін": true, "бар": true,
}

// stemRunes is the prefix length used to match inflected word forms.
const stemRunes = 4

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(trimPunct(word))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

func trimPunct(word string) string {
	return strings.TrimFunc(word, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

// stemOf cuts a lowercased word to its matching prefix.
func stemOf(word string) string {
	if utf8.RuneCountInString(word) <= stemRunes {
		return word
	}
	i := 0
	for pos := range word {
		if i == stemRunes {
			return word[:pos]
		}
		i++
	}
	return word
}

// QueryTerms returns the distinct stems of the content words in query.
func QueryTerms(query string) []string {
	seen := map[string]bool{}
	var terms []string
	for _, w := range tokenizeAndFilter(query) {
		s := stemOf(w)
		if !seen[s] {
			seen[s] = true
			terms = append(terms, s)
		}
	}
	return terms
}

// Highlight passes every word of text that shares a stem with one of terms
// through mark. Whitespace is collapsed to single spaces.
func Highlight(text string, terms []string, mark func(string) string) string {
	if len(terms) == 0 {
		return strings.Join(strings.Fields(text), " ")
	}
	stems := make(map[string]bool, len(terms))
	for _, t := range terms {
		stems[t] = true
	}

	words := strings.Fields(text)
	for i, word := range words {
		cleaned := strings.ToLower(trimPunct(word))
		if cleaned == "" || !stems[stemOf(cleaned)] {
			continue
		}
		// Keep surrounding punctuation outside the mark.
		inner := trimPunct(word)
		start := strings.Index(word, inner)
		words[i] = word[:start] + mark(inner) + word[start+len(inner):]
	}
	return strings.Join(words, " ")
}
