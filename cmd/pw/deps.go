package main

import (
	"go.uber.org/zap"

	"github.com/matsen/pubwatch/internal/aggregate"
	"github.com/matsen/pubwatch/internal/arxiv"
	"github.com/matsen/pubwatch/internal/pipeline"
	"github.com/matsen/pubwatch/internal/publication"
	"github.com/matsen/pubwatch/internal/reconcile"
	"github.com/matsen/pubwatch/internal/storage"
)

// newArxivClient builds an API client from the loaded config.
func newArxivClient() *arxiv.Client {
	return arxiv.NewClient(
		arxiv.WithBaseURL(cfg.Arxiv.BaseURL),
		arxiv.WithPageSize(cfg.Arxiv.PageSize),
		arxiv.WithTimeout(cfg.Arxiv.Timeout()),
		arxiv.WithRequestInterval(cfg.Arxiv.RequestInterval()),
		arxiv.WithLogger(zap.L().Named("arxiv")),
	)
}

// newLoader builds a pipeline loader. Offline-only callers pass live=false
// and get no API client.
func newLoader(live bool) *pipeline.Loader {
	var agg *aggregate.Aggregator
	if live {
		agg = aggregate.New(newArxivClient(),
			aggregate.WithLogger(zap.L().Named("aggregate")),
			aggregate.WithConcurrency(cfg.Fetch.AuthorConcurrency),
			aggregate.WithSkipFailedAuthors(cfg.Fetch.SkipFailedAuthors),
		)
	}
	return pipeline.NewLoader(agg,
		pipeline.Paths{Roster: cfg.RosterPath(), Snapshot: cfg.SnapshotPath()},
		pipeline.WithLogger(zap.L().Named("pipeline")),
		pipeline.WithLimits(cfg.Fetch.MaxResultsKeyword, cfg.Fetch.MaxResultsPerAuthor),
	)
}

// mustOpenIndex opens the SQLite index, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenIndex() *storage.DB {
	db, err := storage.OpenDB(cfg.IndexPath())
	if err != nil {
		exitWithError(ExitError, "opening index: %v", err)
	}
	return db
}

// mustLoadIndexed returns the indexed publications and edges, exiting when
// the index has never been built.
func mustLoadIndexed(db *storage.DB) ([]publication.Record, []reconcile.Edge) {
	meta, err := db.Meta()
	if err != nil {
		exitWithError(ExitError, "reading index: %v", err)
	}
	if meta.Mode == "" {
		exitWithError(ExitNoIndex, "query index is empty\n\nRun 'pw fetch' (or 'pw fetch --offline') to build it.")
	}

	pubs, err := db.LoadPublications()
	if err != nil {
		exitWithError(ExitError, "loading publications: %v", err)
	}
	edges, err := db.LoadEdges()
	if err != nil {
		exitWithError(ExitError, "loading edges: %v", err)
	}
	return pubs, edges
}
