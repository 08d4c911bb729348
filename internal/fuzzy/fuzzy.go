// Package fuzzy scores repository names against a free-form query.
//
// A query matches a candidate only when every query token occurs as a
// substring of some candidate token. Matches close to the start of a
// candidate token, matches that fill most of the token and tokens appearing
// at the same position in both strings score higher.
package fuzzy

import (
	"strings"

	"gorg/internal/text"
)

// Keywords is a tokenized query that can be scored against many candidates.
type Keywords struct {
	parts []string
}

// NewKeywords tokenizes query.
func NewKeywords(query string) Keywords {
	return Keywords{parts: text.Tokens(query)}
}

// IsEmpty reports whether the query has no tokens.
func (k Keywords) IsEmpty() bool {
	return len(k.parts) == 0
}

// Score returns the relevance of candidate for the keywords. Zero means no
// match.
func (k Keywords) Score(candidate string) float64 {
	if len(k.parts) == 0 {
		return 0
	}
	targets := text.Tokens(candidate)

	var score float64
	for pi, p := range k.parts {
		var partScore float64
		for ti, t := range targets {
			i := strings.Index(t, p)
			if i < 0 {
				continue
			}
			filled := float64(len(p)) / float64(len(t))
			index := 1 - float64(i)/float64(len(t))
			partScore += filled*2 + index*2*distance(pi, ti)
		}
		if partScore == 0 {
			return 0
		}
		score += partScore
	}
	return score
}

// Score is a shorthand for NewKeywords(query).Score(candidate).
func Score(query, candidate string) float64 {
	return NewKeywords(query).Score(candidate)
}

// distance weights a match by how far the token moved between query and
// candidate.
func distance(pi, ti int) float64 {
	d := pi - ti
	if d < 0 {
		d = -d
	}
	switch d {
	case 0:
		return 1
	case 1:
		return 0.9
	case 2:
		return 0.8
	case 3:
		return 0.7
	default:
		return 0.6
	}
}
