package index

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repos = []string{
	"github.com/charmbracelet/bubbletea",
	"github.com/golang/go",
	"github.com/jpallari/go",
	"github.com/jpallari/gorg",
	"github.com/jpallari/hugo",
	"github.com/noborus/ov",
	"gitlab.com/gorg/mirror",
}

func TestViewFindMatchesRanked(t *testing.T) {
	view := FromEntries(slices.Values(repos)).View()
	require.Equal(t, len(repos), view.Len())

	for _, query := range []string{"go", "g", "jp go", "gorg", "com", "b", "zzz", ""} {
		var out []Match
		view.FindMatches(query, &out)
		for i, m := range out {
			assert.NotZero(t, m.Score, "query %q record %q", query, m.Record)
			if i > 0 {
				assert.GreaterOrEqual(t, out[i-1].Score, m.Score, "query %q not sorted", query)
			}
		}
	}
}

func TestViewFindMatchesOrder(t *testing.T) {
	view := FromEntries(slices.Values(repos)).View()

	var out []Match
	view.FindMatches("go", &out)
	require.NotEmpty(t, out)
	assert.Equal(t, "github.com/golang/go", out[0].Record)

	records := make([]string, len(out))
	for i, m := range out {
		records[i] = m.Record
	}
	assert.Less(t, slices.Index(records, "github.com/jpallari/gorg"),
		slices.Index(records, "github.com/jpallari/hugo"))
	assert.NotContains(t, records, "github.com/noborus/ov")
}

func TestViewFindMatchesTiesKeepIndexOrder(t *testing.T) {
	view := FromEntries(slices.Values([]string{"c/x", "a/x", "b/x"})).View()

	var out []Match
	view.FindMatches("x", &out)
	require.Len(t, out, 3)
	assert.Equal(t, "a/x", out[0].Record)
	assert.Equal(t, "b/x", out[1].Record)
	assert.Equal(t, "c/x", out[2].Record)
	assert.Equal(t, out[0].Score, out[2].Score)
}

func TestViewFindMatchesReusesBuffer(t *testing.T) {
	view := FromEntries(slices.Values(repos)).View()

	out := make([]Match, 0, 16)
	view.FindMatches("go", &out)
	require.NotEmpty(t, out)
	first := &out[:1][0]

	view.FindMatches("jpallari", &out)
	require.Len(t, out, 3)
	assert.Same(t, first, &out[0])

	view.FindMatches("nothing-matches", &out)
	assert.Empty(t, out)
	assert.Equal(t, 16, cap(out))
}

func TestViewIsSnapshot(t *testing.T) {
	idx := FromEntries(slices.Values([]string{"a/b"}))
	view := idx.View()
	require.NoError(t, idx.Add("a/c"))

	var out []Match
	view.FindMatches("a", &out)
	assert.Len(t, out, 1)
	assert.Equal(t, 1, view.Len())
}
