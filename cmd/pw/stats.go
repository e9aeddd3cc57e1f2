package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/pubwatch/internal/reconcile"
	"github.com/matsen/pubwatch/internal/storage"
)

var statsFilter filterFlags

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show publication and author counts",
	Long: `Count unique papers, unique authors, known-author rows and employee
rows over the (optionally filtered) edges.`,
	Args: cobra.NoArgs,
	Run:  runStats,
}

func init() {
	statsFilter.register(statsCmd)
	rootCmd.AddCommand(statsCmd)
}

// StatsResult is the response for the stats command.
type StatsResult struct {
	reconcile.Stats
	Index storage.IndexMeta `json:"index"`
}

func runStats(cmd *cobra.Command, args []string) {
	filter := statsFilter.mustBuild()

	db := mustOpenIndex()
	defer db.Close()
	pubs, edges := mustLoadIndexed(db)

	meta, err := db.Meta()
	if err != nil {
		exitWithError(ExitError, "reading index: %v", err)
	}
	result := StatsResult{Stats: reconcile.Tally(filter.Apply(edges, pubs)), Index: meta}

	if !humanOutput {
		outputJSON(result)
		return
	}

	outputHuman("Papers:         %d\n", result.Papers)
	outputHuman("Authors:        %d\n", result.Authors)
	outputHuman("Known rows:     %d\n", result.KnownRows)
	outputHuman("Employee rows:  %d\n", result.EmployeeRows)
	outputHuman("\nIndex built %s from %s data (keyword %q)\n",
		meta.BuiltAt.Local().Format("2006-01-02 15:04"), meta.Mode, meta.Keyword)
}
