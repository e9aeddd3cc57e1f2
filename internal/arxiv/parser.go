package arxiv

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed/atom"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/matsen/pubwatch/internal/publication"
)

const (
	// absMarker precedes the short identifier in canonical entry URLs.
	absMarker = "arxiv.org/abs/"

	// errorMarker appears in the id of the pseudo-entry arXiv returns for a rejected query.
	errorMarker = "arxiv.org/api/errors"

	doiLinkTitle = "doi"
)

var yearPattern = regexp.MustCompile(`^(\d{4})-`)

// Page is one parsed response page.
type Page struct {
	Entries []*atom.Entry

	// TotalResults is the opensearch total for the query, or -1 if absent.
	TotalResults int
}

// ParseFeed reads one Atom response body.
func ParseFeed(r io.Reader) (*Page, error) {
	fp := &atom.Parser{}
	feed, err := fp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing feed: %v", ErrInvalidResponse, err)
	}

	page := &Page{
		Entries:      feed.Entries,
		TotalResults: extensionInt(feed.Extensions, "opensearch", "totalResults", -1),
	}

	// A malformed query comes back as a 200 feed with a single error entry.
	if len(feed.Entries) == 1 && feed.Entries[0] != nil && strings.Contains(feed.Entries[0].ID, errorMarker) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, normalizeSpace(feed.Entries[0].Summary))
	}

	return page, nil
}

// ParseEntry maps one Atom entry into a Record. Missing optional fields are
// left empty; it never fails.
func ParseEntry(e *atom.Entry) publication.Record {
	if e == nil {
		return publication.Record{}
	}

	idURL := strings.TrimSpace(e.ID)
	published := strings.TrimSpace(e.Published)

	rec := publication.Record{
		ArxivID:    ExtractArxivID(idURL),
		IDURL:      idURL,
		Title:      normalizeSpace(e.Title),
		Summary:    normalizeSpace(e.Summary),
		Authors:    authorNames(e),
		Categories: categoryTerms(e),
		JournalRef: extensionValue(e.Extensions, "arxiv", "journal_ref"),
		DOI:        doiLink(e),
		Published:  published,
		Updated:    strings.TrimSpace(e.Updated),
		Year:       ExtractYear(published),
	}
	return rec
}

// ParseEntries maps every entry of a page.
func ParseEntries(entries []*atom.Entry) []publication.Record {
	records := make([]publication.Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, ParseEntry(e))
	}
	return records
}

// ExtractYear returns the leading four-digit year of a "YYYY-..." timestamp, or 0.
func ExtractYear(published string) int {
	m := yearPattern.FindStringSubmatch(published)
	if m == nil {
		return 0
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return year
}

// ExtractArxivID returns the part of an entry URL after "arxiv.org/abs/", or ""
// if the marker is absent.
//
// "http://arxiv.org/abs/2301.00001v2" → "2301.00001v2"
func ExtractArxivID(idURL string) string {
	idx := strings.LastIndex(idURL, absMarker)
	if idx < 0 {
		return ""
	}
	return idURL[idx+len(absMarker):]
}

func authorNames(e *atom.Entry) []string {
	names := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		if a == nil {
			continue
		}
		name := strings.TrimSpace(a.Name)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}

func categoryTerms(e *atom.Entry) []string {
	terms := make([]string, 0, len(e.Categories))
	for _, c := range e.Categories {
		if c == nil || c.Term == "" {
			continue
		}
		terms = append(terms, c.Term)
	}
	return terms
}

func doiLink(e *atom.Entry) string {
	for _, l := range e.Links {
		if l != nil && l.Title == doiLinkTitle {
			return l.Href
		}
	}
	return ""
}

// normalizeSpace collapses runs of whitespace (including line breaks) into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func extensionValue(exts ext.Extensions, prefix, name string) string {
	if exts == nil {
		return ""
	}
	values := exts[prefix][name]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0].Value)
}

func extensionInt(exts ext.Extensions, prefix, name string, fallback int) int {
	raw := extensionValue(exts, prefix, name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
