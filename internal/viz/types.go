// Package viz renders the publication-author graph as a standalone
// Cytoscape.js page.
package viz

// Node types.
const (
	NodeTypePaper  = "paper"
	NodeTypeAuthor = "author"
)

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node represents a publication or an author in the graph.
type Node struct {
	ID   string `json:"id"`
	Type string `json:"type"` // "paper" or "author"

	// Display
	Label string `json:"label"`

	// Paper-specific fields (for tooltips)
	Title string `json:"title,omitempty"`
	Year  int    `json:"year,omitempty"`
	URL   string `json:"url,omitempty"`

	// Author-specific fields (for tooltips and colouring)
	Name      string `json:"name,omitempty"`
	Relation  string `json:"relation,omitempty"`
	ShortName string `json:"shortName,omitempty"`

	// Sizing (for author nodes)
	PaperCount int `json:"paperCount"`
}

// Edge links a publication to one of its authors.
type Edge struct {
	Source   string `json:"source"` // Paper node ID
	Target   string `json:"target"` // Author node ID
	Relation string `json:"relation"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
