package prompt

import "gorg/internal/text"

// nextWordEdge returns the position of the first boundary after the word at
// or after cursor, or the end of the text.
func nextWordEdge(runes []rune, cursor int) int {
	if cursor >= len(runes) {
		return len(runes)
	}
	i := cursor + 1
	if text.IsBoundary(runes[cursor]) {
		for i < len(runes) && text.IsBoundary(runes[i]) {
			i++
		}
	}
	for i < len(runes) && !text.IsBoundary(runes[i]) {
		i++
	}
	return i
}

// prevWordEdge returns the position just after the boundary preceding the
// word at or before cursor, or the start of the text.
func prevWordEdge(runes []rune, cursor int) int {
	if cursor <= 0 {
		return 0
	}
	i := cursor - 2
	if text.IsBoundary(runes[cursor-1]) {
		for i >= 0 && text.IsBoundary(runes[i]) {
			i--
		}
	}
	for i >= 0 && !text.IsBoundary(runes[i]) {
		i--
	}
	return i + 1
}
