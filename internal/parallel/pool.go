package parallel

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

type Pool struct {
	workers int
}

// New returns a pool of the given size. Non-positive sizes use runtime.NumCPU.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

func (p *Pool) Workers() int { return p.workers }

// Chunks splits [0, n) into at most Workers contiguous ranges of at least
// minChunk elements. The ranges are disjoint and cover [0, n) in order.
func (p *Pool) Chunks(n, minChunk int) [][2]int {
	if n <= 0 {
		return nil
	}
	if minChunk < 1 {
		minChunk = 1
	}

	workers := p.workers
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers
	chunks := make([][2]int, 0, workers)
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		chunks = append(chunks, [2]int{start, end})
	}
	return chunks
}

// For runs fn over the chunks of [0, n) concurrently and waits for all of them.
func (p *Pool) For(n, minChunk int, fn func(start, end int)) {
	chunks := p.Chunks(n, minChunk)
	if len(chunks) <= 1 {
		if n > 0 {
			fn(0, n)
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(chunks))
	for _, c := range chunks {
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(c[0], c[1])
	}
	wg.Wait()
}

// ForErr is For with error propagation. Chunks that have not started when a
// chunk fails observe a canceled context.
func (p *Pool) ForErr(ctx context.Context, n, minChunk int, fn func(ctx context.Context, start, end int) error) error {
	chunks := p.Chunks(n, minChunk)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, c := range chunks {
		s, e := c[0], c[1]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, s, e)
		})
	}
	return g.Wait()
}

// Reduce computes one partial result per chunk and merges the partials
// pairwise as a balanced tree. combine must be associative; identity is
// returned for n <= 0.
func Reduce[T any](p *Pool, n, minChunk int, identity T, part func(start, end int) T, combine func(a, b T) T) T {
	chunks := p.Chunks(n, minChunk)
	if len(chunks) == 0 {
		return identity
	}

	partials := make([]T, len(chunks))
	var wg sync.WaitGroup
	wg.Add(len(chunks))
	for i, c := range chunks {
		go func(idx, s, e int) {
			defer wg.Done()
			partials[idx] = part(s, e)
		}(i, c[0], c[1])
	}
	wg.Wait()

	return Tree(partials, combine)
}

// Tree folds values pairwise: (v0 v1) (v2 v3) ... until one value remains.
func Tree[T any](values []T, combine func(a, b T) T) T {
	for len(values) > 1 {
		next := values[:0:0]
		for i := 0; i < len(values); i += 2 {
			if i+1 < len(values) {
				next = append(next, combine(values[i], values[i+1]))
			} else {
				next = append(next, values[i])
			}
		}
		values = next
	}
	return values[0]
}
