// Package command turns a transcribed utterance into a board cell.
//
// Rules are tried in a fixed order and the first one that matches wins:
// a digit 1-9, a spelled-out numeral, the center, a corner (one horizontal
// and one vertical direction), an edge (exactly one direction).
package command

import (
	"strings"
)

const centerCell = 4

// Parse - resolves the utterance with the Polish lexicon.
func Parse(utterance string) (int, bool) {
	return Polish.Parse(utterance)
}

// Parse - returns the board cell (0..8) the utterance names, or false when nothing matches.
func (that *Lexicon) Parse(utterance string) (int, bool) {
	text := Normalize(utterance)
	tokens := words(text)

	if cell, ok := parseDigit(tokens); ok {
		return cell, true
	}

	if cell, ok := that.parseNumeral(tokens); ok {
		return cell, true
	}

	if containsAny(text, that.Center) {
		return centerCell, true
	}

	return that.parseDirection(text)
}

func parseDigit(tokens []string) (int, bool) {
	for _, token := range tokens {
		if len(token) == 1 && token[0] >= '1' && token[0] <= '9' {
			return int(token[0] - '1'), true
		}
	}

	return 0, false
}

// parseNumeral - numerals are matched as whole words only, checked from one to nine.
func (that *Lexicon) parseNumeral(tokens []string) (int, bool) {
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		seen[token] = struct{}{}
	}

	for index, numerals := range that.Numerals {
		for _, word := range numerals {
			if _, ok := seen[word]; ok {
				return index, true
			}
		}
	}

	return 0, false
}

func (that *Lexicon) parseDirection(text string) (int, bool) {
	left := containsAny(text, that.Left)
	right := containsAny(text, that.Right)
	top := containsAny(text, that.Top)
	bottom := containsAny(text, that.Bottom)

	horizontal := left != right
	vertical := top != bottom

	// corners - 1, 3, 7, 9
	if horizontal && vertical {
		switch {
		case top && left:
			return 0, true
		case top && right:
			return 2, true
		case bottom && left:
			return 6, true
		default:
			return 8, true
		}
	}

	// edges - 2, 4, 6, 8
	switch {
	case top && !bottom && !left && !right:
		return 1, true
	case bottom && !top && !left && !right:
		return 7, true
	case left && !right && !top && !bottom:
		return 3, true
	case right && !left && !top && !bottom:
		return 5, true
	}

	return 0, false
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}

	return false
}
