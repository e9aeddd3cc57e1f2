// Package author derives arXiv author-search fragments from free-text names.
package author

import (
	"strings"
	"unicode/utf8"
)

// Name is a free-text author name split into the parts the arXiv query uses.
type Name struct {
	First string // First whitespace-separated token (empty for single-token names)
	Last  string // Last whitespace-separated token
	Full  string // Trimmed input
}

// ParseName splits a full name on whitespace.
//
// Supported formats:
//   - "Notton"               → last="Notton" (single token, no first name)
//   - "Cassandre Notton"     → first="Cassandre", last="Notton"
//   - "Jean-Loup Van Damme"  → first="Jean-Loup", last="Damme"
//
// Middle tokens are ignored. This is a known approximation: compound surnames,
// "Last, First" ordering and non-Latin scripts are not handled.
func ParseName(input string) Name {
	full := strings.TrimSpace(input)
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return Name{}
	case 1:
		return Name{Last: parts[0], Full: full}
	}
	return Name{First: parts[0], Last: parts[len(parts)-1], Full: full}
}

// Initial returns the first character of the first name, or "" if there is none.
func (n Name) Initial() string {
	if n.First == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(n.First)
	return string(r)
}

// ArxivQuery returns the search fragment for this name.
//
// Two or more tokens give au:"<Last>_<Initial>"; a single token falls back to a
// quoted full-text search on the whole name. A blank name yields "".
func (n Name) ArxivQuery() string {
	switch {
	case n.Full == "":
		return ""
	case n.First == "":
		return `all:"` + n.Full + `"`
	}
	return `au:"` + n.Last + "_" + n.Initial() + `"`
}

// ArxivQuery builds the author-search fragment for a full name.
//
// "Cassandre Notton" → au:"Notton_C"
func ArxivQuery(fullName string) string {
	return ParseName(fullName).ArxivQuery()
}
