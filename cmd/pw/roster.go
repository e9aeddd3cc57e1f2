package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/matsen/pubwatch/internal/pipeline"
	"github.com/matsen/pubwatch/internal/roster"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Manage the curated author roster",
}

var rosterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List roster authors",
	Args:  cobra.NoArgs,
	Run:   runRosterList,
}

var (
	rosterShortName string
	rosterEmployee  bool
	rosterNotes     string
)

var rosterAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an author to the roster",
	Long: `Add an author to the roster file, creating it if needed.

An exact-duplicate name leaves the file unchanged. A blank short name is
derived from the name. When a snapshot exists the query index is rebuilt
so edges reflect the new roster.

Examples:
  pw roster add "Jane Doe" --employee
  pw roster add "John Roe" --short-name roe --notes "collaborator"`,
	Args: cobra.ExactArgs(1),
	Run:  runRosterAdd,
}

func init() {
	rosterAddCmd.Flags().StringVar(&rosterShortName, "short-name", "", "Short name (default: derived from name)")
	rosterAddCmd.Flags().BoolVar(&rosterEmployee, "employee", false, "Mark the author as an employee")
	rosterAddCmd.Flags().StringVar(&rosterNotes, "notes", "", "Free-form notes")

	rosterCmd.AddCommand(rosterListCmd)
	rosterCmd.AddCommand(rosterAddCmd)
	rootCmd.AddCommand(rosterCmd)
}

func runRosterList(cmd *cobra.Command, args []string) {
	t, err := roster.Load(cfg.RosterPath())
	if err != nil {
		exitWithError(ExitDataError, "loading roster: %v", err)
	}

	authors := t.Authors()
	if authors == nil {
		authors = []roster.Author{}
	}
	if !humanOutput {
		outputJSON(authors)
		return
	}

	if len(authors) == 0 {
		outputHuman("Roster %s is empty.\n", cfg.RosterPath())
		return
	}
	for _, a := range authors {
		marker := " "
		if a.IsEmployee {
			marker = "*"
		}
		outputHuman("%s %-30s %-20s %s\n", marker, a.Name, a.ShortName, a.Notes)
	}
	outputHuman("\n%d authors (* = employee)\n", len(authors))
}

// RosterAddResult is the response for roster add.
type RosterAddResult struct {
	Status       string        `json:"status"`
	Author       roster.Author `json:"author"`
	IndexRebuilt bool          `json:"index_rebuilt"`
}

func runRosterAdd(cmd *cobra.Command, args []string) {
	loader := newLoader(false)
	stored, added, err := loader.AddAuthor(roster.Author{
		Name:       args[0],
		ShortName:  rosterShortName,
		IsEmployee: rosterEmployee,
		Notes:      rosterNotes,
	})
	if err != nil {
		if errors.Is(err, roster.ErrEmptyName) {
			exitWithError(ExitError, "%v", err)
		}
		exitWithError(ExitDataError, "adding author: %v", err)
	}

	result := RosterAddResult{Status: "added", Author: stored}
	if !added {
		result.Status = "exists"
	} else {
		result.IndexRebuilt = reindexFromSnapshot(cmd, loader)
	}

	if !humanOutput {
		outputJSON(result)
		return
	}
	if !added {
		outputHuman("%s is already on the roster\n", stored.Name)
		return
	}
	outputHuman("Added %s (%s)\n", stored.Name, stored.ShortName)
	if result.IndexRebuilt {
		outputHuman("Rebuilt query index from %s\n", cfg.SnapshotPath())
	}
}

// reindexFromSnapshot rebuilds the index from the snapshot with the current
// roster. It reports false when there is no snapshot to index.
func reindexFromSnapshot(cmd *cobra.Command, loader *pipeline.Loader) bool {
	db := mustOpenIndex()
	defer db.Close()

	meta, err := db.Meta()
	if err != nil {
		exitWithError(ExitError, "reading index: %v", err)
	}
	keyword := meta.Keyword
	if keyword == "" {
		keyword = cfg.Keyword
	}

	res, err := loader.Load(cmd.Context(), pipeline.CacheKey{Mode: pipeline.ModeOffline, Keyword: keyword})
	if err != nil {
		exitWithError(exitCodeFor(err), "reloading snapshot: %v", err)
	}
	if res.NoData {
		return false
	}
	if err := res.Index(db); err != nil {
		exitWithError(ExitError, "rebuilding index: %v", err)
	}
	return true
}
