package index

import (
	"cmp"
	"slices"
	"strings"

	"gorg/internal/fuzzy"
)

// Match is a record and its score against a query.
type Match struct {
	Record string
	Score  float64
}

// View is a read-only snapshot of an index, split into lines once so it can
// be queried on every keystroke.
type View struct {
	lines []string
}

// View snapshots the current index content. Later changes to the index are
// not visible through the view.
func (idx *Index) View() *View {
	lines := make([]string, 0, strings.Count(idx.data, "\n")+1)
	for line := range idx.lines() {
		lines = append(lines, line)
	}
	return &View{lines: lines}
}

// Len returns the number of records in the view.
func (v *View) Len() int {
	return len(v.lines)
}

// FindMatches replaces the content of out with the records matching query,
// best match first. Records with equal scores keep their index order. The
// backing array of out is reused between calls.
func (v *View) FindMatches(query string, out *[]Match) {
	kws := fuzzy.NewKeywords(query)
	results := (*out)[:0]
	for _, line := range v.lines {
		if score := kws.Score(line); score != 0 {
			results = append(results, Match{Record: line, Score: score})
		}
	}
	slices.SortStableFunc(results, func(a, b Match) int {
		return cmp.Compare(b.Score, a.Score)
	})
	*out = results
}
