// Package fetch runs probes for a set of distinct URLs on a bounded
// worker pool and exposes the results as a blocking lookup table.
//
// All URLs are submitted before any result is consumed, so network
// latency overlaps across the whole bookmark tree instead of one
// subtree at a time. Consumers block per key: asking for one URL's
// outcome never waits on an unrelated probe.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/linkprune/linkprune/internal/diag"
	"github.com/linkprune/linkprune/internal/probe"
)

// DefaultConcurrency is the default worker pool size. Probes are
// short-lived and spend almost all their time waiting on the network,
// so the pool is sized for thousands of in-flight requests rather than
// for CPU parallelism.
const DefaultConcurrency = 2048

// ErrUnknownURL is returned by Table.Get for a URL that was never
// scheduled. Seeing it means the discovery walk and the rebuild walk
// disagreed about the tree, which is a bug, not an input problem.
var ErrUnknownURL = errors.New("url was not scheduled")

// Prober is the per-URL unit of work the scheduler dispatches.
type Prober interface {
	Probe(ctx context.Context, rawURL string) probe.Outcome
}

// future is one eventually-available outcome. The worker that owns the
// key stores the outcome and closes done; every reader waits on done.
type future struct {
	done    chan struct{}
	outcome probe.Outcome
}

// Table maps each scheduled URL to its eventually-completed outcome.
// Keys are the exact URL strings seen in the tree; no normalization is
// applied, so URLs differing only in case are separate entries.
//
// A Table is created fully keyed: once Schedule returns, lookups can
// only block, never miss.
type Table struct {
	futures map[string]*future
	group   *errgroup.Group
}

// Get blocks until the outcome for rawURL is available and returns it.
// ctx aborts the wait, not the underlying probe.
func (t *Table) Get(ctx context.Context, rawURL string) (probe.Outcome, error) {
	fut, ok := t.futures[rawURL]
	if !ok {
		return probe.Outcome{}, fmt.Errorf("%w: %q", ErrUnknownURL, rawURL)
	}
	select {
	case <-fut.done:
		return fut.outcome, nil
	case <-ctx.Done():
		return probe.Outcome{}, ctx.Err()
	}
}

// Len returns the number of distinct URLs in the table.
func (t *Table) Len() int { return len(t.futures) }

// Wait blocks until every scheduled probe has finished. The pass calls
// this after the rebuild so the worker pool is fully drained before the
// pass returns.
func (t *Table) Wait() error {
	return t.group.Wait()
}

// Scheduler deduplicates URLs and dispatches at most one probe per
// distinct URL onto a bounded pool.
type Scheduler struct {
	prober      Prober
	concurrency int
	diag        *diag.Logger
	logger      *slog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithConcurrency bounds the number of in-flight probes. Values below 1
// fall back to DefaultConcurrency.
func WithConcurrency(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithDiag sets the diagnostic stream for submission lines.
func WithDiag(d *diag.Logger) SchedulerOption {
	return func(s *Scheduler) { s.diag = d }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = logger }
}

// NewScheduler creates a Scheduler dispatching work to prober.
func NewScheduler(prober Prober, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		prober:      prober,
		concurrency: DefaultConcurrency,
		diag:        diag.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Schedule submits one probe per distinct URL and returns the table of
// pending outcomes. Duplicate URLs share a single probe; first-seen
// order decides scheduling order only, never results. One diagnostic
// line per distinct URL is written at submission time.
//
// A failed probe is an outcome, not an error: nothing a worker does can
// cancel other workers or fail the pass.
func (s *Scheduler) Schedule(ctx context.Context, urls []string) *Table {
	table := &Table{
		futures: make(map[string]*future, len(urls)),
		group:   &errgroup.Group{},
	}
	table.group.SetLimit(s.concurrency)

	s.logger.Debug("scheduling probes",
		"urls", len(urls),
		"concurrency", s.concurrency,
	)

	scheduled := 0
	for _, rawURL := range urls {
		rawURL := rawURL
		if _, seen := table.futures[rawURL]; seen {
			continue
		}
		fut := &future{done: make(chan struct{})}
		table.futures[rawURL] = fut
		scheduled++

		switch probe.Classify(rawURL) {
		case probe.ClassFile:
			s.diag.File(rawURL)
		case probe.ClassPassthrough:
			s.diag.Keep(rawURL)
		case probe.ClassFetch:
			s.diag.Fetch(rawURL)
		}

		table.group.Go(func() error {
			fut.outcome = s.prober.Probe(ctx, rawURL)
			close(fut.done)
			return nil
		})
	}

	s.logger.Debug("probes submitted",
		"distinct", scheduled,
		"duplicates", len(urls)-scheduled,
	)
	return table
}
