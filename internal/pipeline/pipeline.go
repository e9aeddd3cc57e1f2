// Package pipeline runs ingestion and reconciliation end to end and memoizes
// results per (mode, keyword) until the roster changes.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/matsen/pubwatch/internal/aggregate"
	"github.com/matsen/pubwatch/internal/publication"
	"github.com/matsen/pubwatch/internal/reconcile"
	"github.com/matsen/pubwatch/internal/roster"
	"github.com/matsen/pubwatch/internal/storage"
)

// Mode selects where publications come from.
type Mode string

const (
	ModeLive    Mode = "live"    // Query the API and refresh the snapshot
	ModeOffline Mode = "offline" // Read the snapshot file
)

// ErrNoAggregator is returned for a live load on a loader built without one.
var ErrNoAggregator = errors.New("live mode requires an aggregator")

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeLive, ModeOffline:
		return m, nil
	}
	return "", fmt.Errorf("invalid mode: %s (valid: live, offline)", s)
}

// CacheKey identifies one memoized load.
type CacheKey struct {
	Mode    Mode
	Keyword string
}

// Result is the output of one pipeline run.
type Result struct {
	Key          CacheKey
	Publications []publication.Record
	Roster       *roster.Table
	Edges        []reconcile.Edge
	// NoData is set when offline mode found no snapshot.
	NoData   bool
	LoadedAt time.Time
}

// Paths locates the files a loader reads and writes.
type Paths struct {
	Roster   string
	Snapshot string
}

// Loader runs the pipeline and caches results.
type Loader struct {
	agg   *aggregate.Aggregator
	paths Paths
	log   *zap.Logger
	now   func() time.Time

	maxKeyword   int
	maxPerAuthor int

	mu    sync.Mutex
	cache map[CacheKey]*Result
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// WithLimits sets the per-strategy result caps. Zero keeps the aggregator defaults.
func WithLimits(maxKeyword, maxPerAuthor int) Option {
	return func(l *Loader) {
		l.maxKeyword = maxKeyword
		l.maxPerAuthor = maxPerAuthor
	}
}

// NewLoader creates a loader. agg may be nil when only offline loads are needed.
func NewLoader(agg *aggregate.Aggregator, paths Paths, opts ...Option) *Loader {
	l := &Loader{
		agg:   agg,
		paths: paths,
		log:   zap.NewNop(),
		now:   time.Now,
		cache: make(map[CacheKey]*Result),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the memoized result for key, running the pipeline on a miss.
// Failed runs are not cached.
func (l *Loader) Load(ctx context.Context, key CacheKey) (*Result, error) {
	key.Keyword = strings.TrimSpace(key.Keyword)

	l.mu.Lock()
	defer l.mu.Unlock()

	if res, ok := l.cache[key]; ok {
		l.log.Debug("pipeline cache hit", zap.String("mode", string(key.Mode)), zap.String("keyword", key.Keyword))
		return res, nil
	}

	res, err := l.run(ctx, key)
	if err != nil {
		return nil, err
	}

	if key.Mode == ModeLive {
		// The snapshot was rewritten.
		delete(l.cache, CacheKey{Mode: ModeOffline, Keyword: key.Keyword})
	}
	l.cache[key] = res
	return res, nil
}

// Invalidate drops every memoized result. Call it after the roster changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[CacheKey]*Result)
}

func (l *Loader) run(ctx context.Context, key CacheKey) (*Result, error) {
	ref, err := roster.Load(l.paths.Roster)
	if err != nil {
		return nil, err
	}

	res := &Result{Key: key, Roster: ref, LoadedAt: l.now()}

	switch key.Mode {
	case ModeLive:
		res.Publications, err = l.fetch(ctx, key.Keyword, ref)
	case ModeOffline:
		res.Publications, err = storage.ReadSnapshot(l.paths.Snapshot)
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			l.log.Warn("no offline snapshot; run a live fetch first", zap.String("path", l.paths.Snapshot))
			res.NoData = true
			err = nil
		}
	default:
		return nil, fmt.Errorf("invalid mode: %q", key.Mode)
	}
	if err != nil {
		return nil, err
	}

	res.Edges = reconcile.Reconcile(res.Publications, ref)
	l.log.Info("pipeline loaded",
		zap.String("mode", string(key.Mode)),
		zap.Int("publications", len(res.Publications)),
		zap.Int("edges", len(res.Edges)),
		zap.Int("roster", ref.Len()),
	)
	return res, nil
}

func (l *Loader) fetch(ctx context.Context, keyword string, ref *roster.Table) ([]publication.Record, error) {
	if l.agg == nil {
		return nil, ErrNoAggregator
	}

	pubs, err := l.agg.Run(ctx, aggregate.Request{
		Keyword:             keyword,
		AuthorNames:         ref.Names(),
		MaxResultsKeyword:   l.maxKeyword,
		MaxResultsPerAuthor: l.maxPerAuthor,
	})
	if err != nil {
		return nil, err
	}

	if l.paths.Snapshot != "" {
		if err := storage.WriteSnapshot(l.paths.Snapshot, pubs); err != nil {
			return nil, fmt.Errorf("saving snapshot: %w", err)
		}
		l.log.Info("snapshot written", zap.String("path", l.paths.Snapshot), zap.Int("publications", len(pubs)))
	}
	return pubs, nil
}

// Index replaces the contents of db with this result.
func (r *Result) Index(db *storage.DB) error {
	return db.Rebuild(r.Publications, r.Edges, storage.IndexMeta{
		Mode:    string(r.Key.Mode),
		Keyword: r.Key.Keyword,
		BuiltAt: r.LoadedAt,
	})
}

// AddAuthor appends an author to the roster file and invalidates the cache
// when the roster changed.
func (l *Loader) AddAuthor(a roster.Author) (roster.Author, bool, error) {
	stored, added, err := roster.Append(l.paths.Roster, a)
	if err != nil {
		return roster.Author{}, false, err
	}
	if added {
		l.Invalidate()
		l.log.Info("roster updated", zap.String("name", stored.Name))
	}
	return stored, added, nil
}
