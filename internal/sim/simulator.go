package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/potsim/internal/field"
	"github.com/san-kum/potsim/internal/metrics"
	"github.com/san-kum/potsim/internal/particle"
	"github.com/san-kum/potsim/internal/potential"
	"go.uber.org/zap"
)

// Runner drives an engine through compute, render and move for a number of
// iterations.
type Runner struct {
	engine    potential.Engine
	cmap      ColorMap
	sink      FrameSink
	logger    *zap.Logger
	metrics   []metrics.Metric
	observers []Observer
}

func New(engine potential.Engine, cmap ColorMap, sink FrameSink) *Runner {
	if sink == nil {
		sink = DiscardSink
	}
	return &Runner{
		engine:    engine,
		cmap:      cmap,
		sink:      sink,
		logger:    zap.NewNop(),
		metrics:   make([]metrics.Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (r *Runner) AddMetric(m metrics.Metric)   { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)       { r.observers = append(r.observers, o) }
func (r *Runner) SetLogger(logger *zap.Logger) { r.logger = logger }

// Run mutates ps in place. On failure the returned result covers the
// iterations completed before the error.
func (r *Runner) Run(ctx context.Context, ps []particle.Particle, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Extents: make([]field.Extent, 0, cfg.MaxIter),
		Metrics: make(map[string]float64),
	}
	for _, m := range r.metrics {
		m.Reset()
		m.Observe(ps)
	}

	start := time.Now()
	defer func() {
		result.Elapsed = time.Since(start)
		result.Metrics = metrics.Snapshot(r.metrics)
	}()

	for iter := 0; iter < cfg.MaxIter; iter++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		ext, err := r.engine.ComputeField(ps)
		if err != nil {
			return result, &RunError{Iteration: iter, Op: "compute", Wrapped: err}
		}
		if iter == 0 || cfg.UpdateScale {
			r.cmap.SetScale(ext.Lo, ext.Hi)
		}

		if err := r.saveFrame(iter); err != nil {
			return result, &RunError{Iteration: iter, Op: "save", Wrapped: err}
		}

		if err := r.engine.MoveParticles(ps, cfg.Dt, cfg.Substeps); err != nil {
			return result, &RunError{Iteration: iter, Op: "move", Wrapped: err}
		}

		for _, m := range r.metrics {
			m.Observe(ps)
		}
		for _, obs := range r.observers {
			obs.OnIteration(iter, ext, ps)
		}

		result.Iterations++
		result.Extent = ext
		result.Extents = append(result.Extents, ext)

		r.logger.Debug("iteration done",
			zap.Int("iter", iter),
			zap.String("engine", r.engine.Name()),
			zap.Float64("lo", ext.Lo),
			zap.Float64("hi", ext.Hi))
	}

	return result, nil
}

func (r *Runner) saveFrame(iter int) error {
	w, err := r.sink.Frame(iter)
	if err != nil {
		return err
	}
	if err := r.engine.SaveSolution(w, r.cmap); err != nil {
		if a, ok := w.(aborter); ok {
			_ = a.Abort()
		} else {
			_ = w.Close()
		}
		return err
	}
	return w.Close()
}

func validateConfig(cfg Config) error {
	if cfg.MaxIter <= 0 {
		return fmt.Errorf("max iterations must be positive, got %d", cfg.MaxIter)
	}
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %g", cfg.Dt)
	}
	if cfg.Substeps <= 0 {
		return fmt.Errorf("substeps must be positive, got %d", cfg.Substeps)
	}
	return nil
}
