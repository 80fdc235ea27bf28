package command

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ł and Ł have no canonical decomposition, so NFD leaves them alone.
var strokeLetters = runes.Map(func(r rune) rune {
	switch r {
	case 'ł':
		return 'l'
	case 'Ł':
		return 'L'
	default:
		return r
	}
})

// Normalize - lower-cases, trims and strips diacritics, so "Górny" and "gorny" compare equal.
func Normalize(text string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), strokeLetters, norm.NFC)

	folded, _, err := transform.String(folder, strings.ToLower(strings.TrimSpace(text)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(text))
	}

	return folded
}

// words - splits normalized text on anything that is not a letter or a digit.
func words(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
