// Package resource implements admission control and memory governance for
// searchers.
//
// The Controller manages three resource types:
//
//   - Searchers: Limit concurrently open searchers (blocking semaphore)
//   - Open rate: Token bucket on searcher creation
//   - Memory: Budget for materialized sort buffers (non-blocking, fail-fast)
//
// # Memory Management
//
// AcquireMemory is non-blocking and returns ErrMemoryLimitExceeded
// immediately when the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//
//	if err := rc.AcquireMemory(4096); err != nil {
//	    // ErrMemoryLimitExceeded
//	}
//	defer rc.ReleaseMemory(4096)
//
// # Searcher Admission
//
//	if err := rc.AcquireSearcher(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseSearcher()
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
