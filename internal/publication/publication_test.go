package publication

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "whitespace only", input: "   ", want: nil},
		{name: "single", input: "Jane Doe", want: []string{"Jane Doe"}},
		{name: "trims tokens", input: "Jane Doe,  John Roe ", want: []string{"Jane Doe", "John Roe"}},
		{name: "drops empty tokens", input: "A, , B,", want: []string{"A", "B"}},
		{name: "keeps duplicates", input: "A, B, B", want: []string{"A", "B", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.input))
		})
	}
}

func TestJoinList(t *testing.T) {
	assert.Equal(t, "", JoinList(nil))
	assert.Equal(t, "quant-ph", JoinList([]string{"quant-ph"}))
	assert.Equal(t, "quant-ph, physics.optics", JoinList([]string{"quant-ph", "physics.optics"}))
}

func TestTag(t *testing.T) {
	recs := []Record{{ArxivID: "1"}, {ArxivID: "2"}}
	got := Tag(recs, SourceAuthor)
	for _, r := range got {
		assert.Equal(t, SourceAuthor, r.Source)
	}
}

func TestRecordText(t *testing.T) {
	r := Record{
		Authors:    []string{"Jane Doe", "John Roe"},
		Categories: []string{"quant-ph"},
	}
	assert.Equal(t, "Jane Doe, John Roe", r.AuthorsText())
	assert.Equal(t, "quant-ph", r.CategoriesText())
	assert.False(t, r.HasKey())
}
