// Package reconcile expands publications into (publication, author) edges and
// classifies each author against the curated roster.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/matsen/pubwatch/internal/publication"
	"github.com/matsen/pubwatch/internal/roster"
)

// Relation classifies an author's tie to the roster.
type Relation string

const (
	RelationEmployee Relation = "employee" // Known and flagged as employee
	RelationKnown    Relation = "known"    // Listed in the roster
	RelationUnknown  Relation = "unknown"  // Not in the roster
)

// ValidRelations lists the accepted relation values, strongest first.
var ValidRelations = []Relation{RelationEmployee, RelationKnown, RelationUnknown}

// ParseRelation validates a relation name.
func ParseRelation(s string) (Relation, error) {
	r := Relation(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range ValidRelations {
		if r == v {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid relation: %s (valid: %v)", s, ValidRelations)
}

// Edge is one (publication, author) pair.
type Edge struct {
	// PublicationIndex is the position of the publication in the reconciled slice.
	PublicationIndex int    `json:"-"`
	PublicationID    string `json:"publication_id"`
	AuthorName       string `json:"author_name"`

	IsKnownAuthor bool     `json:"is_known_author"`
	IsEmployee    bool     `json:"is_employee"`
	Relation      Relation `json:"relation"`

	// Copied from the matched roster row.
	ShortName string `json:"short_name,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Reconcile emits one edge per non-empty author token of every publication and
// left-joins it against the roster by exact name.
//
// Tokens come from splitting the comma-joined author string, so duplicates
// within a publication produce duplicate edges. A nil roster matches nothing.
func Reconcile(pubs []publication.Record, ref *roster.Table) []Edge {
	edges := make([]Edge, 0, len(pubs)*4)
	if len(pubs) == 0 {
		return edges
	}

	for i, p := range pubs {
		for _, name := range publication.SplitList(p.AuthorsText()) {
			e := Edge{
				PublicationIndex: i,
				PublicationID:    p.ArxivID,
				AuthorName:       name,
				Relation:         RelationUnknown,
			}
			if a, ok := ref.Lookup(name); ok {
				e.IsKnownAuthor = true
				e.IsEmployee = a.IsEmployee
				e.ShortName = a.ShortName
				e.Notes = a.Notes
				e.Relation = RelationKnown
				if a.IsEmployee {
					e.Relation = RelationEmployee
				}
			}
			edges = append(edges, e)
		}
	}
	return edges
}
