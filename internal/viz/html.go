package viz

import (
	"bytes"
	"fmt"
	"html/template"
)

// CytoscapeURL is the script loaded by generated pages.
const CytoscapeURL = "https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Layout string // "force", "circle", "grid" or "bipartite"
	Title  string // Page heading
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{
		Layout: "force",
		Title:  "Publication graph",
	}
}

// ValidLayouts lists the supported layout algorithm names.
var ValidLayouts = []string{"force", "circle", "grid", "bipartite"}

// GenerateHTML generates a standalone HTML page for the graph.
func GenerateHTML(graph *GraphData, opts HTMLOptions) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}

	layout, err := layoutToCytoscape(opts.Layout)
	if err != nil {
		return "", err
	}
	if opts.Title == "" {
		opts.Title = DefaultOptions().Title
	}

	graphJSON, err := graph.ToCytoscapeJSON()
	if err != nil {
		return "", err
	}

	data := templateData{
		Title:     opts.Title,
		ScriptURL: CytoscapeURL,
		GraphJSON: template.JS(graphJSON),
		Layout:    layout,
		Empty:     graph.IsEmpty(),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// templateData holds data for the HTML template.
type templateData struct {
	Title     string
	ScriptURL string
	GraphJSON template.JS
	Layout    string
	Empty     bool
}

// layoutToCytoscape converts user-facing layout names to Cytoscape.js layout names.
func layoutToCytoscape(layout string) (string, error) {
	switch layout {
	case "", "force":
		return "cose", nil
	case "circle":
		return "circle", nil
	case "grid":
		return "grid", nil
	case "bipartite":
		return "breadthfirst", nil
	default:
		return "", fmt.Errorf("invalid layout %q: must be force, circle, grid, or bipartite", layout)
	}
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="{{.ScriptURL}}"></script>
  <style>
    body { font-family: -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; margin: 0; background: #f5f5f5; }
    header { padding: 8px 16px; background: white; border-bottom: 1px solid #ddd; }
    header h1 { font-size: 16px; margin: 0; display: inline-block; }
    .legend span { margin-left: 14px; font-size: 12px; }
    .dot { display: inline-block; width: 10px; height: 10px; border-radius: 50%; margin-right: 4px; }
    #cy { width: 100%; height: calc(100vh - 40px); background: white; }
    #tooltip { position: absolute; display: none; background: white; border: 1px solid #ccc; border-radius: 4px;
      padding: 6px 10px; font-size: 13px; max-width: 320px; pointer-events: none; box-shadow: 0 2px 8px rgba(0,0,0,0.15); }
    .empty { text-align: center; color: #666; padding-top: 20vh; }
  </style>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    <span class="legend">
      <span><i class="dot" style="background:#4A90D9"></i>paper</span>
      <span><i class="dot" style="background:#D0021B"></i>employee</span>
      <span><i class="dot" style="background:#F5A623"></i>known</span>
      <span><i class="dot" style="background:#9B9B9B"></i>unknown</span>
    </span>
  </header>
{{if .Empty}}
  <div class="empty"><p>No publications to show.</p><p>Run <code>pw fetch</code> or relax the filters.</p></div>
{{else}}
  <div id="cy"></div>
  <div id="tooltip"></div>
  <script>
    (function() {
      const graphData = {{.GraphJSON}};
      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: graphData,
        style: [
          { selector: 'node[type="paper"]',
            style: { 'background-color': '#4A90D9', 'shape': 'round-rectangle', 'width': 16, 'height': 16 } },
          { selector: 'node[type="author"]',
            style: { 'label': 'data(label)', 'font-size': '10px', 'text-valign': 'bottom',
                     'width': 'mapData(paperCount, 1, 20, 14, 40)', 'height': 'mapData(paperCount, 1, 20, 14, 40)' } },
          { selector: 'node.employee', style: { 'background-color': '#D0021B' } },
          { selector: 'node.known', style: { 'background-color': '#F5A623' } },
          { selector: 'node.unknown', style: { 'background-color': '#9B9B9B' } },
          { selector: 'edge', style: { 'width': 1, 'line-color': '#ccc' } },
          { selector: 'edge.rostered', style: { 'width': 2, 'line-color': '#888' } },
          { selector: '.faded', style: { 'opacity': 0.15 } }
        ],
        layout: { name: "{{.Layout}}", animate: false }
      });

      const tooltip = document.getElementById('tooltip');
      cy.on('mouseover', 'node', function(evt) {
        const d = evt.target.data();
        let html = '';
        if (d.type === 'paper') {
          html = '<b>' + escapeHTML(d.title || d.label) + '</b><br>' + (d.year || 'year unknown');
        } else {
          html = '<b>' + escapeHTML(d.name) + '</b><br>' + d.relation + ', ' + d.paperCount + ' paper(s)';
        }
        tooltip.innerHTML = html;
        tooltip.style.left = (evt.renderedPosition.x + 12) + 'px';
        tooltip.style.top = (evt.renderedPosition.y + 52) + 'px';
        tooltip.style.display = 'block';
      });
      cy.on('mouseout', 'node', function() { tooltip.style.display = 'none'; });

      cy.on('tap', 'node', function(evt) {
        const hood = evt.target.closedNeighborhood();
        cy.elements().addClass('faded');
        hood.removeClass('faded');
      });
      cy.on('tap', function(evt) {
        if (evt.target === cy) { cy.elements().removeClass('faded'); }
      });
      cy.on('dbltap', 'node[type="paper"]', function(evt) {
        const url = evt.target.data('url');
        if (url) { window.open(url, '_blank'); }
      });

      function escapeHTML(s) {
        const div = document.createElement('div');
        div.textContent = s || '';
        return div.innerHTML;
      }
    })();
  </script>
{{end}}
</body>
</html>`
