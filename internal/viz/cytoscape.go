package viz

import (
	"encoding/json"
	"fmt"

	"github.com/matsen/pubwatch/internal/reconcile"
)

// CytoscapeElements is the elements object handed to cytoscape().
type CytoscapeElements struct {
	Nodes []CytoscapeNode `json:"nodes"`
	Edges []CytoscapeEdge `json:"edges"`
}

// CytoscapeNode wraps a node with its style classes.
type CytoscapeNode struct {
	Data    Node   `json:"data"`
	Classes string `json:"classes,omitempty"`
}

// CytoscapeEdge wraps an authorship edge with its style classes.
type CytoscapeEdge struct {
	Data    CytoscapeEdgeData `json:"data"`
	Classes string            `json:"classes,omitempty"`
}

// CytoscapeEdgeData is one paper-author link.
type CytoscapeEdgeData struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// ToCytoscapeJSON renders the graph as Cytoscape.js elements. Author nodes
// and their edges carry the roster relation as a class; edges to roster
// members are also marked "rostered".
func (g *GraphData) ToCytoscapeJSON() (string, error) {
	elements := CytoscapeElements{
		Nodes: make([]CytoscapeNode, 0, len(g.Nodes)),
		Edges: make([]CytoscapeEdge, 0, len(g.Edges)),
	}

	for _, n := range g.Nodes {
		classes := n.Type
		if n.Type == NodeTypeAuthor && n.Relation != "" {
			classes += " " + n.Relation
		}
		elements.Nodes = append(elements.Nodes, CytoscapeNode{Data: n, Classes: classes})
	}

	for i, e := range g.Edges {
		classes := e.Relation
		switch reconcile.Relation(e.Relation) {
		case reconcile.RelationEmployee, reconcile.RelationKnown:
			classes += " rostered"
		}
		elements.Edges = append(elements.Edges, CytoscapeEdge{
			Data: CytoscapeEdgeData{
				ID:       fmt.Sprintf("e%d", i),
				Source:   e.Source,
				Target:   e.Target,
				Relation: e.Relation,
			},
			Classes: classes,
		})
	}

	out, err := json.Marshal(elements)
	if err != nil {
		return "", fmt.Errorf("encoding graph elements: %w", err)
	}
	return string(out), nil
}
