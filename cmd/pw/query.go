package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/pubwatch/internal/author"
	"github.com/matsen/pubwatch/internal/reconcile"
	"github.com/matsen/pubwatch/internal/roster"
	"github.com/matsen/pubwatch/internal/storage"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the index",
}

var queryAuthorCmd = &cobra.Command{
	Use:   "author <name>",
	Short: "Show an author's indexed publications",
	Long: `Show the publications an author appears on (exact name match), how the
author relates to the roster, and the arXiv query fragment used to search
for them.

Examples:
  pw query author "Jane Doe" --human`,
	Args: cobra.ExactArgs(1),
	Run:  runQueryAuthor,
}

func init() {
	queryCmd.AddCommand(queryAuthorCmd)
	rootCmd.AddCommand(queryCmd)
}

// AuthorQueryResult is the response for query author.
type AuthorQueryResult struct {
	Name         string             `json:"name"`
	ArxivQuery   string             `json:"arxiv_query"`
	Relation     reconcile.Relation `json:"relation"`
	ShortName    string             `json:"short_name,omitempty"`
	Publications []storage.EdgeRow  `json:"publications"`
}

func runQueryAuthor(cmd *cobra.Command, args []string) {
	name := strings.TrimSpace(args[0])
	if name == "" {
		exitWithError(ExitError, "author name cannot be empty")
	}

	ref, err := roster.Load(cfg.RosterPath())
	if err != nil {
		exitWithError(ExitDataError, "loading roster: %v", err)
	}

	db := mustOpenIndex()
	defer db.Close()
	mustLoadIndexed(db)

	rows, err := db.AuthorPublications(name)
	if err != nil {
		exitWithError(ExitError, "querying author: %v", err)
	}
	if rows == nil {
		rows = []storage.EdgeRow{}
	}

	result := AuthorQueryResult{
		Name:         name,
		ArxivQuery:   author.ArxivQuery(name),
		Relation:     reconcile.RelationUnknown,
		Publications: rows,
	}
	if a, ok := ref.Lookup(name); ok {
		result.ShortName = a.ShortName
		result.Relation = reconcile.RelationKnown
		if a.IsEmployee {
			result.Relation = reconcile.RelationEmployee
		}
	}

	if !humanOutput {
		outputJSON(result)
		return
	}

	outputHuman("%s (%s)\n", result.Name, result.Relation)
	outputHuman("arXiv query: %s\n\n", result.ArxivQuery)
	if len(rows) == 0 {
		outputHuman("No indexed publications.\n")
		return
	}
	for _, r := range rows {
		outputHuman("%-4s  %s\n", formatYear(r.Year), truncateString(r.Title, DetailTitleMaxLen))
	}
	outputHuman("\n%d publications\n", len(rows))
}
