package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/pubwatch/internal/pipeline"
	"github.com/matsen/pubwatch/internal/reconcile"
)

var (
	fetchOffline      bool
	fetchKeyword      string
	fetchMaxKeyword   int
	fetchMaxPerAuthor int
	fetchConcurrency  int
	fetchSkipFailed   bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch publications and rebuild the query index",
	Long: `Run the ingestion pipeline and rebuild the query index.

Live mode searches arXiv for the keyword and for every roster author,
merges and deduplicates the results, and overwrites the snapshot file.
With --offline the snapshot is read instead and no requests are made.

Examples:
  pw fetch
  pw fetch --keyword "boson sampling" --max-keyword 50
  pw fetch --offline --human`,
	Args: cobra.NoArgs,
	Run:  runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchOffline, "offline", false, "Read the snapshot instead of querying arXiv")
	fetchCmd.Flags().StringVar(&fetchKeyword, "keyword", "", "Keyword to search (default from config)")
	fetchCmd.Flags().IntVar(&fetchMaxKeyword, "max-keyword", 0, "Maximum keyword results (default from config)")
	fetchCmd.Flags().IntVar(&fetchMaxPerAuthor, "max-per-author", 0, "Maximum results per author (default from config)")
	fetchCmd.Flags().IntVar(&fetchConcurrency, "concurrency", 0, "Authors searched in parallel (default from config)")
	fetchCmd.Flags().BoolVar(&fetchSkipFailed, "skip-failed-authors", false, "Log and skip authors whose search fails")
	rootCmd.AddCommand(fetchCmd)
}

// FetchResult is the response for the fetch command.
type FetchResult struct {
	Status       string          `json:"status"`
	Mode         pipeline.Mode   `json:"mode"`
	Keyword      string          `json:"keyword"`
	Publications int             `json:"publications"`
	Edges        int             `json:"edges"`
	NoData       bool            `json:"no_data,omitempty"`
	Snapshot     string          `json:"snapshot"`
	Index        string          `json:"index"`
	Stats        reconcile.Stats `json:"stats"`
}

func runFetch(cmd *cobra.Command, args []string) {
	keyword := cfg.Keyword
	if cmd.Flags().Changed("keyword") {
		keyword = fetchKeyword
	}
	if fetchMaxKeyword > 0 {
		cfg.Fetch.MaxResultsKeyword = fetchMaxKeyword
	}
	if fetchMaxPerAuthor > 0 {
		cfg.Fetch.MaxResultsPerAuthor = fetchMaxPerAuthor
	}
	if fetchConcurrency > 0 {
		cfg.Fetch.AuthorConcurrency = fetchConcurrency
	}
	if fetchSkipFailed {
		cfg.Fetch.SkipFailedAuthors = true
	}

	mode := pipeline.ModeLive
	if fetchOffline {
		mode = pipeline.ModeOffline
	}

	res, err := newLoader(mode == pipeline.ModeLive).Load(cmd.Context(), pipeline.CacheKey{Mode: mode, Keyword: keyword})
	if err != nil {
		exitWithError(exitCodeFor(err), "fetching publications: %s", describeError(err))
	}

	db := mustOpenIndex()
	defer db.Close()
	if err := res.Index(db); err != nil {
		exitWithError(ExitError, "rebuilding index: %v", err)
	}

	result := FetchResult{
		Status:       "fetched",
		Mode:         mode,
		Keyword:      res.Key.Keyword,
		Publications: len(res.Publications),
		Edges:        len(res.Edges),
		NoData:       res.NoData,
		Snapshot:     cfg.SnapshotPath(),
		Index:        cfg.IndexPath(),
		Stats:        reconcile.Tally(res.Edges),
	}
	if res.NoData {
		result.Status = "no_data"
	}

	if !humanOutput {
		outputJSON(result)
		return
	}

	if res.NoData {
		outputHuman("No snapshot at %s\nRun 'pw fetch' without --offline to fetch from arXiv.\n", result.Snapshot)
		return
	}
	outputHuman("Fetched %d publications (%s, keyword %q)\n", result.Publications, mode, result.Keyword)
	outputHuman("  %d edges, %d authors, %d known-author rows, %d employee rows\n",
		result.Edges, result.Stats.Authors, result.Stats.KnownRows, result.Stats.EmployeeRows)
	if mode == pipeline.ModeLive {
		outputHuman("  snapshot: %s\n", result.Snapshot)
	}
	outputHuman("  index:    %s\n", result.Index)
}
