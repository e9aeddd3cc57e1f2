// Package aggregate combines the keyword and per-author search strategies into
// one deduplicated publication set.
package aggregate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/pubwatch/internal/arxiv"
	"github.com/matsen/pubwatch/internal/author"
	"github.com/matsen/pubwatch/internal/publication"
)

// Default per-strategy caps.
const (
	DefaultMaxResultsKeyword   = 200
	DefaultMaxResultsPerAuthor = 50
)

// Searcher runs one paginated query and returns parsed records.
type Searcher interface {
	Search(ctx context.Context, searchQuery string, maxResults int) ([]publication.Record, error)
}

// Request describes one aggregation run.
type Request struct {
	Keyword             string
	AuthorNames         []string
	MaxResultsKeyword   int
	MaxResultsPerAuthor int
}

// AuthorError reports the author whose search failed.
type AuthorError struct {
	Name  string
	Query string
	Err   error
}

func (e *AuthorError) Error() string {
	return fmt.Sprintf("author %q (%s): %v", e.Name, e.Query, e.Err)
}

func (e *AuthorError) Unwrap() error {
	return e.Err
}

// Aggregator runs both strategies against a Searcher.
type Aggregator struct {
	searcher    Searcher
	log         *zap.Logger
	concurrency int
	skipFailed  bool
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(a *Aggregator) {
		if log != nil {
			a.log = log
		}
	}
}

// WithConcurrency sets how many author searches may run at once. Values below 1 mean 1.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		a.concurrency = max(n, 1)
	}
}

// WithSkipFailedAuthors makes a failing author search log a warning and
// contribute no records instead of failing the run.
func WithSkipFailedAuthors(skip bool) Option {
	return func(a *Aggregator) {
		a.skipFailed = skip
	}
}

// New creates an Aggregator.
func New(s Searcher, opts ...Option) *Aggregator {
	a := &Aggregator{
		searcher:    s,
		log:         zap.NewNop(),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes the keyword strategy and the author strategy, then merges,
// sorts and deduplicates the results. Both strategies returning nothing
// yields an empty, non-nil slice.
func (a *Aggregator) Run(ctx context.Context, req Request) ([]publication.Record, error) {
	if req.MaxResultsKeyword == 0 {
		req.MaxResultsKeyword = DefaultMaxResultsKeyword
	}
	if req.MaxResultsPerAuthor == 0 {
		req.MaxResultsPerAuthor = DefaultMaxResultsPerAuthor
	}

	kw, err := a.RunKeyword(ctx, req.Keyword, req.MaxResultsKeyword)
	if err != nil {
		return nil, err
	}

	au, err := a.RunAuthors(ctx, req.AuthorNames, req.MaxResultsPerAuthor)
	if err != nil {
		return nil, err
	}

	combined := Combine(kw, au)
	a.log.Info("aggregated publications",
		zap.Int("keyword", len(kw)),
		zap.Int("author", len(au)),
		zap.Int("combined", len(combined)),
	)
	return combined, nil
}

// RunKeyword runs the keyword strategy and tags results as keyword-sourced.
// A blank keyword skips the strategy.
func (a *Aggregator) RunKeyword(ctx context.Context, keyword string, maxResults int) ([]publication.Record, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		a.log.Info("no keyword given, skipping keyword search")
		return nil, nil
	}

	q := arxiv.KeywordQuery(keyword)
	recs, err := a.searcher.Search(ctx, q, maxResults)
	if err != nil {
		return nil, fmt.Errorf("keyword search %q: %w", q, err)
	}
	a.log.Info("keyword search done", zap.String("query", q), zap.Int("records", len(recs)))
	return publication.Tag(recs, publication.SourceKeyword), nil
}

// RunAuthors searches every non-blank name, tags results as author-sourced and
// deduplicates them by arXiv ID. Results are merged in input order regardless
// of concurrency.
func (a *Aggregator) RunAuthors(ctx context.Context, names []string, maxPerAuthor int) ([]publication.Record, error) {
	var queries []authorQuery
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		queries = append(queries, authorQuery{name: name, query: author.ArxivQuery(name)})
	}
	if len(queries) == 0 {
		return nil, nil
	}

	results := make([][]publication.Record, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, aq := range queries {
		g.Go(func() error {
			recs, err := a.searcher.Search(gctx, aq.query, maxPerAuthor)
			if err != nil {
				authErr := &AuthorError{Name: aq.name, Query: aq.query, Err: err}
				if a.skipFailed {
					a.log.Warn("skipping author after failed search", zap.Error(authErr))
					return nil
				}
				return authErr
			}
			a.log.Debug("author search done", zap.String("author", aq.name), zap.String("query", aq.query), zap.Int("records", len(recs)))
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []publication.Record
	for _, recs := range results {
		all = append(all, recs...)
	}
	publication.Tag(all, publication.SourceAuthor)
	return DedupByArxivID(all), nil
}

type authorQuery struct {
	name  string
	query string
}

// Combine concatenates keyword then author records, sorts them and keeps the
// first record per arXiv ID.
func Combine(keyword, authorRecs []publication.Record) []publication.Record {
	combined := make([]publication.Record, 0, len(keyword)+len(authorRecs))
	combined = append(combined, keyword...)
	combined = append(combined, authorRecs...)
	if len(combined) == 0 {
		return combined
	}
	SortRecords(combined)
	return DedupByArxivID(combined)
}

// SortRecords orders records by year descending, then title ascending, then
// keyword before author. Unknown years (0) sort last. The sort is stable.
func SortRecords(recs []publication.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return sourceRank(a.Source) < sourceRank(b.Source)
	})
}

func sourceRank(s publication.Source) int {
	switch s {
	case publication.SourceKeyword:
		return 0
	case publication.SourceAuthor:
		return 1
	}
	return 2
}

// DedupByArxivID keeps the first record for each arXiv ID. Records without an
// ID are all kept.
func DedupByArxivID(recs []publication.Record) []publication.Record {
	seen := make(map[string]bool, len(recs))
	out := make([]publication.Record, 0, len(recs))
	for _, r := range recs {
		if r.HasKey() {
			if seen[r.ArxivID] {
				continue
			}
			seen[r.ArxivID] = true
		}
		out = append(out, r)
	}
	return out
}
