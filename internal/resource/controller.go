package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for materialized query buffers.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxSearchers is the maximum number of concurrently open searchers.
	// If 0, unlimited.
	MaxSearchers int64

	// SearchersPerSec limits how fast searchers may be opened.
	// If 0, unlimited.
	SearchersPerSec float64
}

// Controller manages resources shared by all searchers of an index.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	searcherSem *semaphore.Weighted // nil if unlimited
	open        atomic.Int64

	openLimiter *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.MaxSearchers > 0 {
		c.searcherSem = semaphore.NewWeighted(cfg.MaxSearchers)
	}

	if cfg.SearchersPerSec > 0 {
		burst := max(int(cfg.SearchersPerSec), 1)
		c.openLimiter = rate.NewLimiter(rate.Limit(cfg.SearchersPerSec), burst)
	}

	return c
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireSearcher waits for the open rate limit and a free searcher slot.
func (c *Controller) AcquireSearcher(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.openLimiter != nil {
		if err := c.openLimiter.Wait(ctx); err != nil {
			return err
		}
	}
	if c.searcherSem != nil {
		if err := c.searcherSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	c.open.Add(1)
	return nil
}

// TryAcquireSearcher reserves a searcher slot without blocking.
func (c *Controller) TryAcquireSearcher() bool {
	if c == nil {
		return true
	}
	if c.openLimiter != nil && !c.openLimiter.Allow() {
		return false
	}
	if c.searcherSem != nil && !c.searcherSem.TryAcquire(1) {
		return false
	}
	c.open.Add(1)
	return true
}

// ReleaseSearcher releases a searcher slot.
func (c *Controller) ReleaseSearcher() {
	if c == nil {
		return
	}
	if c.searcherSem != nil {
		c.searcherSem.Release(1)
	}
	c.open.Add(-1)
}

// OpenSearchers returns the number of searchers currently holding a slot.
func (c *Controller) OpenSearchers() int64 {
	if c == nil {
		return 0
	}
	return c.open.Load()
}
