// Package publication defines the normalized bibliographic record produced by ingestion.
package publication

import "strings"

// Source identifies which query strategy produced a record.
type Source string

const (
	SourceKeyword Source = "keyword"
	SourceAuthor  Source = "author"
)

// ListSeparator joins author and category lists at the storage and display boundary.
const ListSeparator = ", "

// Record is one normalized publication entry.
//
// Optional string fields are empty when the source omits them, and Year is 0
// when it cannot be derived from Published.
type Record struct {
	// Identity
	ArxivID string `json:"arxiv_id,omitempty"` // Short identifier (natural dedup key)
	IDURL   string `json:"id_url,omitempty"`   // Canonical entry URL

	// Metadata
	Title      string   `json:"title,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Authors    []string `json:"authors"` // Full names in source order
	Categories []string `json:"categories"`
	JournalRef string   `json:"journal_ref,omitempty"`
	DOI        string   `json:"doi,omitempty"`

	// Dates (source-native timestamps)
	Published string `json:"published,omitempty"`
	Updated   string `json:"updated,omitempty"`
	Year      int    `json:"year,omitempty"`

	// Source is empty until the aggregator tags the record.
	Source Source `json:"source,omitempty"`
}

// HasKey reports whether the record carries a deduplication key.
func (r Record) HasKey() bool {
	return r.ArxivID != ""
}

// AuthorsText returns the authors joined with ListSeparator.
func (r Record) AuthorsText() string {
	return JoinList(r.Authors)
}

// CategoriesText returns the categories joined with ListSeparator.
func (r Record) CategoriesText() string {
	return JoinList(r.Categories)
}

// JoinList joins items with ListSeparator. A nil or empty slice yields "".
func JoinList(items []string) string {
	return strings.Join(items, ListSeparator)
}

// SplitList splits a comma-joined list, trimming each token and dropping empty ones.
//
// A comma inside a name cannot be told apart from a separator; such names are
// split into two tokens.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		items = append(items, p)
	}
	return items
}

// Tag sets the source on every record and returns the same slice.
func Tag(records []Record, src Source) []Record {
	for i := range records {
		records[i].Source = src
	}
	return records
}
