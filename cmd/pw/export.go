package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/pubwatch/internal/export"
	"github.com/matsen/pubwatch/internal/publication"
	"github.com/matsen/pubwatch/internal/reconcile"
)

var (
	exportFilter filterFlags
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export indexed publications as BibTeX",
	Long: `Write the indexed publications as BibTeX. Filters select edges first,
so a publication is exported if any of its edges match.

Examples:
  pw export --relation employee > team.bib
  pw export --year 2024 -o 2024.bib`,
	Args: cobra.NoArgs,
	Run:  runExport,
}

func init() {
	exportFilter.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	filter := exportFilter.mustBuild()

	db := mustOpenIndex()
	defer db.Close()
	pubs, edges := mustLoadIndexed(db)

	selected := selectPublications(pubs, filter.Apply(edges, pubs))
	bib := export.ToBibTeXList(selected)

	if exportOutput == "" {
		fmt.Print(bib)
		return
	}
	if err := os.WriteFile(exportOutput, []byte(bib), 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", exportOutput, err)
	}
	if humanOutput {
		outputHuman("Exported %d publications to %s\n", len(selected), exportOutput)
	} else {
		outputJSON(StatusResponse{Status: "exported", Path: exportOutput})
	}
}

// selectPublications returns the publications referenced by edges, in
// first-reference order.
func selectPublications(pubs []publication.Record, edges []reconcile.Edge) []publication.Record {
	seen := make(map[int]bool)
	var out []publication.Record
	for _, e := range edges {
		if seen[e.PublicationIndex] || e.PublicationIndex < 0 || e.PublicationIndex >= len(pubs) {
			continue
		}
		seen[e.PublicationIndex] = true
		out = append(out, pubs[e.PublicationIndex])
	}
	return out
}
