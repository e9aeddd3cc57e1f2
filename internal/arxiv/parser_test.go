package arxiv

import (
	"strings"
	"testing"

	"github.com/mmcdole/gofeed/atom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFeedFullEntry(t *testing.T) {
	page, err := ParseFeed(strings.NewReader(buildFeed(1, sampleEntry)))
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, 1, page.TotalResults)

	rec := ParseEntry(page.Entries[0])
	assert.Equal(t, "2301.00001v2", rec.ArxivID)
	assert.Equal(t, "http://arxiv.org/abs/2301.00001v2", rec.IDURL)
	assert.Equal(t, "A Photonic Quantum Computer", rec.Title)
	assert.Equal(t, "We build a machine.", rec.Summary)
	assert.Equal(t, []string{"Jane Doe", "John Roe"}, rec.Authors)
	assert.Equal(t, "Jane Doe, John Roe", rec.AuthorsText())
	assert.Equal(t, "2023-01-02T18:00:00Z", rec.Published)
	assert.Equal(t, "2023-02-01T10:00:00Z", rec.Updated)
	assert.Equal(t, 2023, rec.Year)
	assert.Equal(t, "http://dx.doi.org/10.1000/xyz", rec.DOI, "first doi link wins")
	assert.Equal(t, "Nature 1, 2 (2023)", rec.JournalRef)
	assert.Equal(t, "quant-ph, physics.optics", rec.CategoriesText())
	assert.Empty(t, rec.Source)
}

func TestParseEntryMissingFields(t *testing.T) {
	entry := `  <entry>
    <id>http://example.org/paper/42</id>
  </entry>
`
	page, err := ParseFeed(strings.NewReader(buildFeed(-1, entry)))
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, -1, page.TotalResults)

	rec := ParseEntry(page.Entries[0])
	assert.Empty(t, rec.ArxivID, "url without marker has no key")
	assert.Equal(t, "http://example.org/paper/42", rec.IDURL)
	assert.Empty(t, rec.Title)
	assert.Empty(t, rec.Summary)
	assert.Empty(t, rec.Authors)
	assert.Equal(t, "", rec.AuthorsText())
	assert.Empty(t, rec.Categories)
	assert.Equal(t, "", rec.CategoriesText())
	assert.Empty(t, rec.DOI)
	assert.Empty(t, rec.JournalRef)
	assert.Equal(t, 0, rec.Year)
}

func TestParseEntryNil(t *testing.T) {
	rec := ParseEntry(nil)
	assert.Empty(t, rec.ArxivID)
	assert.Equal(t, 0, rec.Year)
}

func TestParseEntrySkipsNilChildren(t *testing.T) {
	e := &atom.Entry{
		ID:         "http://arxiv.org/abs/2401.1",
		Authors:    []*atom.Person{nil, {Name: "  "}, {Name: " Ada Lovelace "}},
		Categories: []*atom.Category{nil, {Term: ""}, {Term: "cs.LG"}},
		Links:      []*atom.Link{nil, {Title: "pdf", Href: "x"}},
	}
	rec := ParseEntry(e)
	assert.Equal(t, []string{"Ada Lovelace"}, rec.Authors)
	assert.Equal(t, []string{"cs.LG"}, rec.Categories)
	assert.Empty(t, rec.DOI)
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		published string
		want      int
	}{
		{"2023-01-02T18:00:00Z", 2023},
		{"1999-12-31", 1999},
		{"", 0},
		{"23-01-02", 0},
		{"2023", 0},
		{"year 2023-01", 0},
		{"abcd-01-01", 0},
	}

	for _, tt := range tests {
		t.Run(tt.published, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractYear(tt.published))
		})
	}
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"http://arxiv.org/abs/2301.00001v2", "2301.00001v2"},
		{"https://arxiv.org/abs/hep-th/9901001v1", "hep-th/9901001v1"},
		{"http://example.org/abs/1234", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractArxivID(tt.url))
		})
	}
}

func TestParseFeedMalformed(t *testing.T) {
	_, err := ParseFeed(strings.NewReader("this is not xml"))
	require.Error(t, err)
	assert.True(t, IsParseError(err))
	assert.False(t, IsTransportError(err))
}

func TestParseFeedWrongRoot(t *testing.T) {
	_, err := ParseFeed(strings.NewReader("<html><body>maintenance</body></html>"))
	require.Error(t, err)
	assert.True(t, IsParseError(err))
}

func TestParseFeedErrorEntry(t *testing.T) {
	entry := `  <entry>
    <id>http://arxiv.org/api/errors#incorrect_id_format_for_1234</id>
    <title>Error</title>
    <summary>incorrect id format for 1234</summary>
  </entry>
`
	_, err := ParseFeed(strings.NewReader(buildFeed(1, entry)))
	require.Error(t, err)
	assert.True(t, IsParseError(err))
	assert.Contains(t, err.Error(), "incorrect id format")
}
