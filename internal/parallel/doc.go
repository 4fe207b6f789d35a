// Package parallel provides the fork-join worker pool used by the parallel
// potential engine.
//
// Work over [0, n) is split into contiguous, disjoint chunks. Every call
// returns only after all chunks finished, so a call boundary is a full
// barrier: writes made by one call are visible to the next.
//
//	pool := parallel.New(8)
//	pool.For(n, 16, func(start, end int) { ... })
//
// # Thread Safety
//
// A Pool holds no mutable state and may be shared.
package parallel
