package reconcile

import (
	"sort"
	"strings"

	"github.com/matsen/pubwatch/internal/publication"
)

// Filter narrows a set of edges. Empty fields do not filter.
type Filter struct {
	Years     []int
	Authors   []string
	Relations []Relation
	Text      string // Case-insensitive substring of title or summary
}

// Apply returns the matching edges sorted by year descending, author name, then title.
func (f Filter) Apply(edges []Edge, pubs []publication.Record) []Edge {
	years := setOf(f.Years)
	authors := setOf(f.Authors)
	relations := setOf(f.Relations)
	text := strings.ToLower(strings.TrimSpace(f.Text))

	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		p := pubAt(pubs, e.PublicationIndex)
		if len(years) > 0 && !years[p.Year] {
			continue
		}
		if len(authors) > 0 && !authors[e.AuthorName] {
			continue
		}
		if len(relations) > 0 && !relations[e.Relation] {
			continue
		}
		if text != "" &&
			!strings.Contains(strings.ToLower(p.Title), text) &&
			!strings.Contains(strings.ToLower(p.Summary), text) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := pubAt(pubs, out[i].PublicationIndex), pubAt(pubs, out[j].PublicationIndex)
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if out[i].AuthorName != out[j].AuthorName {
			return out[i].AuthorName < out[j].AuthorName
		}
		return a.Title < b.Title
	})
	return out
}

// Stats summarizes a set of edges.
type Stats struct {
	Papers       int `json:"papers"`        // Distinct non-empty publication IDs
	Authors      int `json:"authors"`       // Distinct author names
	KnownRows    int `json:"known_rows"`    // Edges whose author is in the roster
	EmployeeRows int `json:"employee_rows"` // Edges whose author is an employee
}

// Tally computes Stats over edges.
func Tally(edges []Edge) Stats {
	papers := make(map[string]bool)
	authors := make(map[string]bool)
	var s Stats
	for _, e := range edges {
		if e.PublicationID != "" {
			papers[e.PublicationID] = true
		}
		authors[e.AuthorName] = true
		if e.IsKnownAuthor {
			s.KnownRows++
		}
		if e.IsEmployee {
			s.EmployeeRows++
		}
	}
	s.Papers = len(papers)
	s.Authors = len(authors)
	return s
}

// Summary is one publication with its authors grouped back together.
type Summary struct {
	ArxivID      string   `json:"arxiv_id,omitempty"`
	Title        string   `json:"title,omitempty"`
	Year         int      `json:"year,omitempty"`
	Published    string   `json:"published,omitempty"`
	IDURL        string   `json:"id_url,omitempty"`
	DOI          string   `json:"doi,omitempty"`
	Categories   string   `json:"categories,omitempty"`
	Authors      []string `json:"authors"`       // Sorted, unique
	KnownAuthors []string `json:"known_authors"` // Sorted, unique roster matches
}

// Summarize groups edges by publication. Publications without any edge are
// omitted. Results are sorted by year descending then title.
func Summarize(pubs []publication.Record, edges []Edge) []Summary {
	type group struct {
		authors map[string]bool
		known   map[string]bool
	}
	groups := make(map[int]*group)
	var order []int
	for _, e := range edges {
		g, ok := groups[e.PublicationIndex]
		if !ok {
			g = &group{authors: map[string]bool{}, known: map[string]bool{}}
			groups[e.PublicationIndex] = g
			order = append(order, e.PublicationIndex)
		}
		g.authors[e.AuthorName] = true
		if e.IsKnownAuthor {
			g.known[e.AuthorName] = true
		}
	}

	out := make([]Summary, 0, len(order))
	for _, idx := range order {
		p := pubAt(pubs, idx)
		g := groups[idx]
		out = append(out, Summary{
			ArxivID:      p.ArxivID,
			Title:        p.Title,
			Year:         p.Year,
			Published:    p.Published,
			IDURL:        p.IDURL,
			DOI:          p.DOI,
			Categories:   p.CategoriesText(),
			Authors:      sortedKeys(g.authors),
			KnownAuthors: sortedKeys(g.known),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Title < out[j].Title
	})
	return out
}

func pubAt(pubs []publication.Record, idx int) publication.Record {
	if idx < 0 || idx >= len(pubs) {
		return publication.Record{}
	}
	return pubs[idx]
}

func setOf[T comparable](items []T) map[T]bool {
	m := make(map[T]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
