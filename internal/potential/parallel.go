package potential

import (
	"context"
	"fmt"
	"io"

	"github.com/san-kum/potsim/internal/field"
	"github.com/san-kum/potsim/internal/parallel"
	"github.com/san-kum/potsim/internal/particle"
	"go.uber.org/zap"
)

// Parallel partitions grid rows and particle indices across a worker pool.
// Every partition writes a disjoint set of cells, pixels or particles, so no
// locking is needed; correctness rests on the barriers at the end of each
// pool call.
type Parallel struct {
	grid *field.Grid
	pool *parallel.Pool
	opts options
}

func NewParallel(width, height int, opts ...Option) (*Parallel, error) {
	g, err := field.New(width, height)
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &Parallel{grid: g, pool: parallel.New(o.workers), opts: o}, nil
}

func (p *Parallel) Name() string      { return KindParallel }
func (p *Parallel) Grid() *field.Grid { return p.grid }
func (p *Parallel) Workers() int      { return p.pool.Workers() }

func (p *Parallel) ComputeField(ps []particle.Particle) (field.Extent, error) {
	if err := checkParticles(ps); err != nil {
		return field.Extent{}, opErr(KindParallel, "compute_field", err)
	}

	p.grid.Reset()
	ext := parallel.Reduce(p.pool, p.grid.Height, p.opts.minChunk, field.EmptyExtent(),
		func(start, end int) field.Extent {
			return sampleRows(p.grid, ps, start, end)
		},
		field.Combine)
	p.grid.MarkReady()

	p.opts.logger.Debug("field computed",
		zap.String("engine", KindParallel),
		zap.Int("workers", p.pool.Workers()),
		zap.Int("particles", len(ps)),
		zap.Float64("lo", ext.Lo),
		zap.Float64("hi", ext.Hi))
	return ext, nil
}

// MoveParticles runs sub-steps in order. Within a sub-step the force phase
// completes for every particle before any position changes.
func (p *Parallel) MoveParticles(ps []particle.Particle, dt float64, substeps int) error {
	if err := checkStep(ps, dt, substeps); err != nil {
		return opErr(KindParallel, "move_particles", err)
	}

	n := len(ps)
	ssdt := dt / float64(substeps)
	for ss := 0; ss < substeps; ss++ {
		p.pool.For(n, p.opts.minChunk, func(start, end int) {
			for i := start; i < end; i++ {
				ps[i].F = netForce(ps, i)
			}
		})
		p.pool.For(n, p.opts.minChunk, func(start, end int) {
			for i := start; i < end; i++ {
				integrate(&ps[i], ssdt)
			}
		})
	}
	return nil
}

func (p *Parallel) SaveSolution(w io.Writer, cmap ColorMap) error {
	if !p.grid.Ready() {
		return opErr(KindParallel, "save_solution", ErrFieldNotComputed)
	}

	err := p.pool.ForErr(context.Background(), p.grid.Height, p.opts.minChunk,
		func(_ context.Context, start, end int) error {
			return shadeRows(p.grid, cmap, start, end)
		})
	if err != nil {
		return opErr(KindParallel, "save_solution", fmt.Errorf("colormap: %w", err))
	}
	if err := p.opts.encoder.Encode(w, p.grid.Pixels); err != nil {
		return opErr(KindParallel, "save_solution", err)
	}
	return nil
}
