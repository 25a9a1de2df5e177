// Package filter implements one filtering pass over a bookmark tree:
// discover every URL, probe them all concurrently, then rebuild the
// tree keeping only the bookmarks the policy lets through.
//
// The rebuild is structural: container nodes are always retained (even
// when every descendant bookmark is dropped), sibling order is
// preserved, and the result depends only on the input tree, never on
// the order in which probes happen to complete.
package filter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/linkprune/linkprune/internal/bookmark"
	"github.com/linkprune/linkprune/internal/classify"
	"github.com/linkprune/linkprune/internal/diag"
	"github.com/linkprune/linkprune/internal/fetch"
)

// Dropped records one bookmark removed by the pass, for reporting.
type Dropped struct {
	// URL is the bookmark's location as written in the tree.
	URL string

	// Title is the bookmark's title metadata, if any.
	Title string

	// Reason describes the probe outcome that caused the drop, e.g.
	// "status 404" or "FileNotFound: /tmp/missing".
	Reason string
}

// Result is the product of one filtering pass.
type Result struct {
	// Root is the rebuilt tree. Always a well-formed rooted entry: if
	// everything was dropped, it is the canonical empty places root.
	Root *bookmark.Entry

	// DropCount is the number of bookmarks removed.
	DropCount int

	// DroppedBookmarks lists every removed bookmark in tree order.
	DroppedBookmarks []Dropped

	// Places is the total number of bookmarks in the input tree,
	// counting duplicates.
	Places int

	// DistinctURLs is the number of unique URLs probed.
	DistinctURLs int

	// Elapsed is the wall-clock duration of the pass.
	Elapsed time.Duration
}

// Filter runs filtering passes. The zero value is not usable; construct
// with New.
type Filter struct {
	scheduler *fetch.Scheduler
	policy    *classify.Policy
	diag      *diag.Logger
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Filter.
type Option func(*Filter)

// WithDiag sets the diagnostic stream for phase and summary lines.
func WithDiag(d *diag.Logger) Option {
	return func(f *Filter) { f.diag = d }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filter) { f.logger = logger }
}

// WithClock overrides the wall clock used for the synthesized empty
// root. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(f *Filter) { f.now = now }
}

// New creates a Filter that probes via scheduler and decides via policy.
func New(scheduler *fetch.Scheduler, policy *classify.Policy, opts ...Option) *Filter {
	f := &Filter{
		scheduler: scheduler,
		policy:    policy,
		diag:      diag.Discard(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Run executes one pass over the tree rooted at root. The input tree is
// never modified; the result holds a fresh tree sharing only leaf
// entries and metadata with the input.
//
// The only errors Run can return are structural: a malformed entry kind
// anywhere in the tree, or a cancelled context. Probe failures are
// absorbed into keep/drop decisions and the diagnostic stream.
func (f *Filter) Run(ctx context.Context, root *bookmark.Entry) (*Result, error) {
	start := f.now()

	f.diag.Phase("loading URLs...")
	var urls []string
	err := bookmark.Walk(root, func(_ []*bookmark.Entry, place *bookmark.Entry) error {
		urls = append(urls, place.URI)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk bookmark tree: %w", err)
	}

	table := f.scheduler.Schedule(ctx, urls)
	f.logger.Info("probes scheduled",
		"places", len(urls),
		"distinct", table.Len(),
	)

	f.diag.Phase("filtering bookmarks...")
	result := &Result{
		Places:       len(urls),
		DistinctURLs: table.Len(),
	}
	rebuilt, err := f.rebuild(ctx, []*bookmark.Entry{root}, table, result)
	if err != nil {
		return nil, err
	}

	// Drain the pool before the pass returns. Every key was consumed
	// during the rebuild, so this only waits out bookkeeping.
	if err := table.Wait(); err != nil {
		return nil, fmt.Errorf("drain probe pool: %w", err)
	}

	if len(rebuilt) == 0 {
		result.Root = bookmark.EmptyRoot(f.now())
	} else {
		result.Root = rebuilt[0]
	}
	result.Elapsed = f.now().Sub(start)

	f.diag.Summary(result.DropCount)
	f.logger.Info("pass complete",
		"dropped", result.DropCount,
		"elapsed", result.Elapsed,
	)
	return result, nil
}

// rebuild reconstructs one sibling list, preserving order. Places are
// kept or dropped per the policy; everything else is treated as a
// container and retained with a recursively rebuilt children list. The
// walk already rejected unknown kinds, so no type check happens here.
func (f *Filter) rebuild(ctx context.Context, entries []*bookmark.Entry, table *fetch.Table, result *Result) ([]*bookmark.Entry, error) {
	filtered := make([]*bookmark.Entry, 0, len(entries))

	for _, entry := range entries {
		if entry.IsPlace() {
			outcome, err := table.Get(ctx, entry.URI)
			if err != nil {
				return nil, fmt.Errorf("await probe outcome: %w", err)
			}
			if f.policy.Classify(entry.URI, outcome) == classify.Keep {
				filtered = append(filtered, entry)
				continue
			}
			result.DropCount++
			result.DroppedBookmarks = append(result.DroppedBookmarks, Dropped{
				URL:    entry.URI,
				Title:  entry.Title(),
				Reason: outcome.String(),
			})
			continue
		}

		clone := entry.ShallowCopy()
		if entry.Children != nil {
			children, err := f.rebuild(ctx, entry.Children, table, result)
			if err != nil {
				return nil, err
			}
			clone.Children = children
		}
		filtered = append(filtered, clone)
	}

	return filtered, nil
}
