package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/pubwatch/internal/arxiv"
	"github.com/matsen/pubwatch/internal/publication"
)

var (
	lookupTitle string
	lookupLimit int
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up arXiv publications by title",
	Long: `Search arXiv for publications whose title matches a phrase. Results
are not stored.

Examples:
  pw lookup --title "Boson sampling with single photons"
  pw lookup --title "graph states" --limit 10 --human`,
	Args: cobra.NoArgs,
	Run:  runLookup,
}

func init() {
	lookupCmd.Flags().StringVar(&lookupTitle, "title", "", "Title phrase to search for (required)")
	lookupCmd.Flags().IntVar(&lookupLimit, "limit", arxiv.DefaultTitleLimit, "Maximum number of results")
	lookupCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) {
	if strings.TrimSpace(lookupTitle) == "" {
		exitWithError(ExitError, "title cannot be empty")
	}

	recs, err := newArxivClient().SearchTitle(cmd.Context(), lookupTitle, lookupLimit)
	if err != nil {
		exitWithError(exitCodeFor(err), "looking up title: %s", describeError(err))
	}
	if recs == nil {
		recs = []publication.Record{}
	}

	if !humanOutput {
		outputJSON(recs)
		return
	}

	if len(recs) == 0 {
		outputHuman("No results.\n")
		return
	}
	for i, r := range recs {
		outputHuman("%d. %s\n", i+1, truncateString(r.Title, DetailTitleMaxLen))
		outputHuman("   %s  arXiv:%s\n", formatYear(r.Year), r.ArxivID)
		outputHuman("   %s\n", wrapText(r.AuthorsText(), TextWrapWidth, "   "))
		if r.DOI != "" {
			outputHuman("   doi:%s\n", r.DOI)
		}
	}
}
