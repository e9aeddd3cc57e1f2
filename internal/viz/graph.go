package viz

import (
	"fmt"
	"sort"

	"github.com/matsen/pubwatch/internal/publication"
	"github.com/matsen/pubwatch/internal/reconcile"
)

// BuildGraph constructs the bipartite graph for a set of edges. Each
// publication referenced by an edge becomes a paper node and each distinct
// author name an author node. Repeated (publication, author) pairs collapse
// into one graph edge.
func BuildGraph(pubs []publication.Record, edges []reconcile.Edge) (*GraphData, error) {
	g := &GraphData{Nodes: []Node{}, Edges: []Edge{}}

	papers := make(map[int]bool)
	authors := make(map[string]*Node)
	linked := make(map[string]bool)

	for _, e := range edges {
		if e.PublicationIndex < 0 || e.PublicationIndex >= len(pubs) {
			return nil, fmt.Errorf("data integrity error: edge references missing publication %d", e.PublicationIndex)
		}

		pid := paperID(e.PublicationIndex)
		if !papers[e.PublicationIndex] {
			papers[e.PublicationIndex] = true
			g.Nodes = append(g.Nodes, newPaperNode(pid, pubs[e.PublicationIndex]))
		}

		aid := authorID(e.AuthorName)
		key := pid + "|" + aid
		if linked[key] {
			continue
		}
		linked[key] = true

		a, ok := authors[aid]
		if !ok {
			a = newAuthorNode(aid, e)
			authors[aid] = a
		}
		a.PaperCount++

		g.Edges = append(g.Edges, Edge{Source: pid, Target: aid, Relation: string(e.Relation)})
	}

	names := make([]string, 0, len(authors))
	for id := range authors {
		names = append(names, id)
	}
	sort.Strings(names)
	for _, id := range names {
		g.Nodes = append(g.Nodes, *authors[id])
	}

	return g, nil
}

// paperID keys papers by position so records without an arXiv ID stay distinct.
func paperID(idx int) string {
	return fmt.Sprintf("p%d", idx)
}

func authorID(name string) string {
	return "a:" + name
}

// newPaperNode creates a visualization node from a publication.
func newPaperNode(id string, rec publication.Record) Node {
	label := rec.ArxivID
	if label == "" {
		label = rec.Title
	}
	return Node{
		ID:    id,
		Type:  NodeTypePaper,
		Label: label,
		Title: rec.Title,
		Year:  rec.Year,
		URL:   rec.IDURL,
	}
}

// newAuthorNode creates a visualization node from the first edge naming an author.
func newAuthorNode(id string, e reconcile.Edge) *Node {
	label := e.AuthorName
	if e.ShortName != "" {
		label = e.ShortName
	}
	return &Node{
		ID:        id,
		Type:      NodeTypeAuthor,
		Label:     label,
		Name:      e.AuthorName,
		Relation:  string(e.Relation),
		ShortName: e.ShortName,
	}
}
