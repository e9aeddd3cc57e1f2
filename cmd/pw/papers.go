package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/pubwatch/internal/reconcile"
)

var papersFilter filterFlags

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "List publications with their authors",
	Long: `List one row per publication, grouping its authors and roster matches.
Filters select edges first, so a publication appears if any of its edges
match.

Examples:
  pw papers --relation employee --human
  pw papers --year 2024`,
	Args: cobra.NoArgs,
	Run:  runPapers,
}

func init() {
	papersFilter.register(papersCmd)
	rootCmd.AddCommand(papersCmd)
}

func runPapers(cmd *cobra.Command, args []string) {
	filter := papersFilter.mustBuild()

	db := mustOpenIndex()
	defer db.Close()
	pubs, edges := mustLoadIndexed(db)

	summaries := reconcile.Summarize(pubs, filter.Apply(edges, pubs))

	if !humanOutput {
		outputJSON(summaries)
		return
	}

	if len(summaries) == 0 {
		outputHuman("No matching publications.\n")
		return
	}
	for _, s := range summaries {
		outputHuman("%s  %s\n", formatYear(s.Year), truncateString(s.Title, DetailTitleMaxLen))
		if s.ArxivID != "" {
			outputHuman("      arXiv:%s\n", s.ArxivID)
		}
		outputHuman("      %s\n", wrapText(strings.Join(s.Authors, ", "), TextWrapWidth, "      "))
		if len(s.KnownAuthors) > 0 {
			outputHuman("      roster: %s\n", strings.Join(s.KnownAuthors, ", "))
		}
	}
	outputHuman("\n%d publications\n", len(summaries))
}
