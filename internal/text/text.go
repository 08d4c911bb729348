// Package text holds the word boundary rules shared by the matcher and the
// prompt line editor.
package text

import "unicode"

// IsBoundary reports whether r separates words: whitespace or ASCII
// punctuation.
func IsBoundary(r rune) bool {
	return unicode.IsSpace(r) ||
		(r >= '!' && r <= '/') ||
		(r >= ':' && r <= '@') ||
		(r >= '[' && r <= '`') ||
		(r >= '{' && r <= '~')
}

// Tokens splits s into maximal runs of non-boundary runes. Empty tokens are
// never returned.
func Tokens(s string) []string {
	var tokens []string
	start := -1
	for i, r := range s {
		if IsBoundary(r) {
			if start >= 0 {
				tokens = append(tokens, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, s[start:])
	}
	return tokens
}
