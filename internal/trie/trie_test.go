package trie

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPrefix(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		inserted [][]string
		query    []string
		want     bool
	}{
		{"empty trie", nil, []string{"a"}, false},
		{"exact", [][]string{{"a", "b"}}, []string{"a", "b"}, true},
		{"descendant", [][]string{{"a", "b"}}, []string{"a", "b", "c"}, true},
		{"ancestor", [][]string{{"a", "b"}}, []string{"a"}, false},
		{"sibling", [][]string{{"a", "b"}}, []string{"a", "c"}, false},
		{"segment not substring", [][]string{{"a", "b"}}, []string{"a", "bc"}, false},
		{"root inserted", [][]string{{}}, []string{"x", "y"}, true},
		{"one of many", [][]string{{"x"}, {"a", "b", "c"}}, []string{"a", "b", "c", "d"}, true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tr := New()
			for _, seq := range tc.inserted {
				tr.Insert(seq)
			}
			assert.Equal(t, tc.want, tr.HasPrefix(tc.query))
		})
	}
}

func TestLenCountsDistinctSequences(t *testing.T) {
	t.Parallel()
	tr := New()
	tr.Insert([]string{"a", "b"})
	tr.Insert([]string{"a", "b"})
	tr.Insert([]string{"a"})
	assert.Equal(t, 2, tr.Len())
}

func TestMatchPath(t *testing.T) {
	t.Parallel()
	tr := New()
	tr.InsertPath("testdata/legacy/")
	tr.InsertPath("./vendor")

	assert.True(t, tr.MatchPath("testdata/legacy/old.contracts.yaml"))
	assert.True(t, tr.MatchPath("vendor/x.contracts.yaml"))
	assert.False(t, tr.MatchPath("testdata/legacy2/a.contracts.yaml"))
	assert.False(t, tr.MatchPath("testdata"))
	assert.Equal(t, []string{"a", "b"}, Split("./a//b/"))
	assert.Nil(t, Split("."))
}
