package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/pubwatch/internal/viz"
)

var (
	graphFilter filterFlags
	graphOutput string
	graphLayout string
	graphTitle  string
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Render the publication-author graph as HTML",
	Long: `Render the indexed (publication, author) edges as a standalone HTML page
using Cytoscape.js. Author nodes are coloured by their roster relation.

Examples:
  pw graph -o graph.html
  pw graph --relation employee --relation known --layout bipartite -o team.html`,
	Args: cobra.NoArgs,
	Run:  runGraph,
}

func init() {
	graphFilter.register(graphCmd)
	graphCmd.Flags().StringVarP(&graphOutput, "output", "o", "", "Write to file instead of stdout")
	graphCmd.Flags().StringVar(&graphLayout, "layout", "force", "Layout: "+strings.Join(viz.ValidLayouts, ", "))
	graphCmd.Flags().StringVar(&graphTitle, "title", "", "Page title")
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) {
	filter := graphFilter.mustBuild()

	db := mustOpenIndex()
	defer db.Close()
	pubs, edges := mustLoadIndexed(db)

	g, err := viz.BuildGraph(pubs, filter.Apply(edges, pubs))
	if err != nil {
		exitWithError(ExitDataError, "building graph: %v", err)
	}

	title := graphTitle
	if title == "" {
		title = fmt.Sprintf("Publications: %s", cfg.Keyword)
	}
	html, err := viz.GenerateHTML(g, viz.HTMLOptions{Layout: graphLayout, Title: title})
	if err != nil {
		exitWithError(ExitError, "generating HTML: %v", err)
	}

	if graphOutput == "" {
		fmt.Print(html)
		return
	}
	if err := os.WriteFile(graphOutput, []byte(html), 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", graphOutput, err)
	}
	if humanOutput {
		outputHuman("Wrote graph with %d nodes and %d edges to %s\n", len(g.Nodes), len(g.Edges), graphOutput)
	} else {
		outputJSON(StatusResponse{Status: "written", Path: graphOutput})
	}
}
