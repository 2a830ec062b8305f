package usecase

import "unicode"

var accentFold = map[rune]rune{
	'á': 'a',
	'é': 'e',
	'í': 'i',
	'ó': 'o',
	'ú': 'u',
	'ñ': 'n',
}

// Normalize lowercases text and folds Spanish accents. Works rune by rune,
// so the result has the same rune count as the input and offsets carry over.
func Normalize(text string) string {
	return string(normalizeRunes(text))
}

func normalizeRunes(text string) []rune {
	runes := []rune(text)
	for i, r := range runes {
		r = unicode.ToLower(r)
		if folded, ok := accentFold[r]; ok {
			r = folded
		}
		runes[i] = r
	}
	return runes
}
