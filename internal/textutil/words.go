package textutil

import (
	"math"
	"strings"
	"unicode"
)

// Words lowercases text and returns its words in order. A word is a run of
// letters and digits; an apostrophe between two letters stays inside the
// word so contractions such as "don't" count once.
func Words(text string) []string {
	runes := []rune(strings.ToLower(text))
	var (
		out  []string
		word []rune
	)
	flush := func() {
		if len(word) > 0 {
			out = append(out, string(word))
			word = word[:0]
		}
	}
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word = append(word, r)
		case isApostrophe(r) && len(word) > 0 && i+1 < len(runes) && unicode.IsLetter(runes[i+1]):
			word = append(word, '\'')
		default:
			flush()
		}
	}
	flush()
	return out
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

// WordCounts is a bag of words keyed by lowercase word.
type WordCounts map[string]int

// CountWords builds the bag of words for text.
func CountWords(text string) WordCounts {
	counts := WordCounts{}
	for _, w := range Words(text) {
		counts[w]++
	}
	return counts
}

// Distinct is the number of different words in the bag.
func (c WordCounts) Distinct() int { return len(c) }

func (c WordCounts) magnitude() float64 {
	var sum float64
	for _, n := range c {
		sum += float64(n) * float64(n)
	}
	return math.Sqrt(sum)
}

// WordCosine is the cosine of the angle between two word-count vectors.
// It ignores word order and scores 0 when either bag is empty.
func WordCosine(a, b WordCounts) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	var dot float64
	for w, n := range small {
		dot += float64(n) * float64(large[w])
	}
	if dot == 0 {
		return 0
	}
	return math.Min(1, dot/(a.magnitude()*b.magnitude()))
}
