package quarry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/quarry/internal/resource"
	"github.com/hupe1980/quarry/internal/simd"
	"github.com/hupe1980/quarry/match"
	"github.com/hupe1980/quarry/store"
)

// TakeAll disables the limit of Search, range filters and sorting.
const TakeAll = match.TakeAll

// Source hands out snapshots. memstore.Index is one.
type Source = store.Source

// Index opens searchers over the snapshots of a source. It is safe for
// concurrent use.
type Index struct {
	src     Source
	opts    options
	ctrl    *resource.Controller
	metrics MetricsCollector
	logger  *Logger
}

// Open returns an Index over src.
func Open(src Source, optFns ...Option) (*Index, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	opts := applyOptions(optFns)
	return &Index{
		src:  src,
		opts: opts,
		ctrl: resource.NewController(resource.Config{
			MemoryLimitBytes: opts.sortMemoryLimit,
			MaxSearchers:     opts.maxSearchers,
			SearchersPerSec:  opts.searchersPerSec,
		}),
		metrics: opts.metricsCollector,
		logger:  opts.logger,
	}, nil
}

// OpenSearchers returns the number of searchers not yet closed.
func (ix *Index) OpenSearchers() int64 { return ix.ctrl.OpenSearchers() }

// SortMemoryUsage returns the memory currently charged to the sort memory
// limit by sorting stages and multi-term merges.
func (ix *Index) SortMemoryUsage() int64 { return ix.ctrl.MemoryUsage() }

// Searcher admits a new searcher and binds it to a fresh snapshot. It blocks
// while the concurrency or rate limit is exhausted, until ctx ends.
func (ix *Index) Searcher(ctx context.Context) (*Searcher, error) {
	start := time.Now()
	id := uuid.NewString()
	logger := ix.logger.WithSearcher(id)

	if err := ix.ctrl.AcquireSearcher(ctx); err != nil {
		ix.metrics.RecordSearcherRejected()
		err = fmt.Errorf("admit searcher: %w", err)
		logger.LogSearcherOpen(ctx, 0, false, err)
		return nil, err
	}

	snap, err := ix.src.Snapshot(ctx)
	if err != nil {
		ix.ctrl.ReleaseSearcher()
		err = translateError(fmt.Errorf("open snapshot: %w", err))
		ix.metrics.RecordSearcherOpen(time.Since(start), err)
		logger.LogSearcherOpen(ctx, 0, false, err)
		return nil, err
	}

	envOpts := []match.EnvOption{
		match.WithBudget(ix.ctrl),
		match.WithInTermThreshold(ix.opts.inTermThreshold),
	}
	if ix.opts.forceScalar {
		envOpts = append(envOpts, match.WithScalarKernels())
	}
	if !ix.opts.specialize {
		envOpts = append(envOpts, match.WithoutSpecialization())
	}

	s := &Searcher{
		id:        id,
		ix:        ix,
		snap:      snap,
		env:       match.NewEnv(snap, envOpts...),
		analyzers: ix.opts.analyzers,
		logger:    logger,
		metrics:   ix.metrics,
	}
	ix.metrics.RecordSearcherOpen(time.Since(start), nil)
	logger.LogSearcherOpen(ctx, snap.NumberOfEntries(), s.IsAccelerated(), nil)
	if s.IsAccelerated() {
		logger.DebugContext(ctx, "kernels", "isa", simd.ActiveISA().String())
	}
	return s, nil
}
