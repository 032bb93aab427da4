package mock

import (
	"strings"
	"unicode"

	"github.com/poiesic/venuefinder/ai"
)

// stemRunes is how many leading runes of a word identify its stem. Russian
// inflection lives mostly in the suffix, so "вкусный", "вкусно" and
// "вкусная" share the stem "вкусн".
const stemRunes = 5

var stopWords = map[string]bool{
	"и": true, "в": true, "во": true, "на": true, "с": true, "со": true,
	"а": true, "но": true, "по": true, "к": true, "у": true, "для": true,
	"это": true, "там": true, "тут": true, "мы": true, "я": true, "очень": true,
	"the": true, "a": true, "and": true, "is": true,
}

var positiveStems = []string{
	"отлич", "вкусн", "прекр", "хорош", "реком", "супер", "уютн", "любим",
	"замеч", "класс", "лучш", "вежли", "прият", "восто", "чудес", "керем",
}

var negativeStems = []string{
	"плох", "ужас", "отвра", "груб", "грязн", "разоч", "хуже", "кошма",
	"обман", "жалоб", "нарек", "невку",
}

// tokenize lowercases text, splits it into words, trims punctuation and
// drops stop words. "не" is kept because it flips sentiment.
func tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(ai.NormalizeText(text)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := words[:0]
	for _, w := range words {
		if !stopWords[w] {
			out = append(out, w)
		}
	}
	return out
}

// stem returns the first stemRunes runes of a word.
func stem(word string) string {
	r := []rune(word)
	if len(r) > stemRunes {
		r = r[:stemRunes]
	}
	return string(r)
}

func hasStem(word string, stems []string) bool {
	for _, s := range stems {
		if strings.HasPrefix(word, s) {
			return true
		}
	}
	return false
}

// polarityCounts counts positive and negative lexicon hits. A positive word
// directly after "не" counts as negative ("не рекомендую").
func polarityCounts(text string) (pos, neg int) {
	words := tokenize(text)
	for i, w := range words {
		negated := i > 0 && words[i-1] == "не"
		switch {
		case hasStem(w, positiveStems) && negated:
			neg++
		case hasStem(w, positiveStems):
			pos++
		case hasStem(w, negativeStems) && negated:
			pos++
		case hasStem(w, negativeStems):
			neg++
		}
	}
	return pos, neg
}
