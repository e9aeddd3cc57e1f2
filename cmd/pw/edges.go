package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/pubwatch/internal/storage"
)

var (
	edgesFilter filterFlags
	edgesLimit  int
)

var edgesCmd = &cobra.Command{
	Use:   "edges",
	Short: "List (publication, author) edges",
	Long: `List one row per (publication, author) pair from the query index,
sorted by year (newest first), author and title.

Examples:
  pw edges --relation employee --human
  pw edges --year 2024 --year 2023 --text "boson sampling"
  pw edges --author "Jane Doe" --limit 0`,
	Args: cobra.NoArgs,
	Run:  runEdges,
}

func init() {
	edgesFilter.register(edgesCmd)
	edgesCmd.Flags().IntVar(&edgesLimit, "limit", DefaultListLimit, "Maximum rows (0 for all)")
	rootCmd.AddCommand(edgesCmd)
}

func runEdges(cmd *cobra.Command, args []string) {
	filter := edgesFilter.mustBuild()

	db := mustOpenIndex()
	defer db.Close()
	mustLoadIndexed(db)

	rows, err := db.QueryEdges(filter, edgesLimit)
	if err != nil {
		exitWithError(ExitError, "querying edges: %v", err)
	}
	if rows == nil {
		rows = []storage.EdgeRow{}
	}

	if !humanOutput {
		outputJSON(rows)
		return
	}

	if len(rows) == 0 {
		outputHuman("No matching edges.\n")
		return
	}
	for _, r := range rows {
		outputHuman("%-4s  %-8s  %-24s  %s\n",
			formatYear(r.Year), r.Relation, truncateString(r.AuthorName, 24), truncateString(r.Title, ListTitleMaxLen))
	}
	outputHuman("\n%d edges\n", len(rows))
}
