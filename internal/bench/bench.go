// Package bench measures how the parallel engine scales with worker count
// against the serial engine.
package bench

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/san-kum/potsim/internal/particle"
	"github.com/san-kum/potsim/internal/potential"
	"github.com/san-kum/potsim/internal/sim"
	"go.uber.org/zap"
)

type Config struct {
	Width       int
	Height      int
	MaxIter     int
	Dt          float64
	Substeps    int
	Repetitions int
	// MaxWorkers bounds the sweep 1..MaxWorkers; zero means runtime.NumCPU.
	MaxWorkers int
}

type Row struct {
	Workers int           `json:"workers"`
	Mean    time.Duration `json:"mean_ns"`
	Speedup float64       `json:"speedup"`
}

type Report struct {
	Serial time.Duration `json:"serial_ns"`
	Rows   []Row         `json:"rows"`
}

// Best returns the row with the highest speedup.
func (r *Report) Best() Row {
	best := Row{}
	for _, row := range r.Rows {
		if row.Speedup > best.Speedup {
			best = row
		}
	}
	return best
}

// WriteDat writes the sweep as whitespace-separated columns.
func (r *Report) WriteDat(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# ncpu temps acceleration")
	for _, row := range r.Rows {
		fmt.Fprintf(bw, "%d %d %g\n", row.Workers, row.Mean.Nanoseconds(), row.Speedup)
	}
	return bw.Flush()
}

type Bench struct {
	cfg      Config
	ensemble []particle.Particle
	cmap     sim.ColorMap
	logger   *zap.Logger
}

// New benchmarks runs over copies of ensemble; it is never mutated.
func New(cfg Config, ensemble []particle.Particle, cmap sim.ColorMap, logger *zap.Logger) (*Bench, error) {
	if cfg.Repetitions <= 0 {
		return nil, fmt.Errorf("bench: repetitions must be positive, got %d", cfg.Repetitions)
	}
	if cfg.MaxWorkers < 0 {
		return nil, fmt.Errorf("bench: max workers must not be negative, got %d", cfg.MaxWorkers)
	}
	if err := particle.Validate(ensemble); err != nil {
		return nil, fmt.Errorf("bench: %w", err)
	}
	if cfg.MaxWorkers == 0 {
		cfg.MaxWorkers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bench{cfg: cfg, ensemble: particle.Clone(ensemble), cmap: cmap, logger: logger}, nil
}

func (b *Bench) Run(ctx context.Context) (*Report, error) {
	serial, err := potential.NewSerial(b.cfg.Width, b.cfg.Height)
	if err != nil {
		return nil, err
	}
	base, err := b.measure(ctx, serial)
	if err != nil {
		return nil, fmt.Errorf("bench: serial: %w", err)
	}
	b.logger.Info("serial baseline", zap.Duration("mean", base))

	report := &Report{Serial: base, Rows: make([]Row, 0, b.cfg.MaxWorkers)}
	for workers := 1; workers <= b.cfg.MaxWorkers; workers++ {
		par, err := potential.NewParallel(b.cfg.Width, b.cfg.Height, potential.WithWorkers(workers))
		if err != nil {
			return nil, err
		}
		mean, err := b.measure(ctx, par)
		if err != nil {
			return nil, fmt.Errorf("bench: %d workers: %w", workers, err)
		}

		speedup := 0.0
		if mean > 0 {
			speedup = float64(base) / float64(mean)
		}
		report.Rows = append(report.Rows, Row{Workers: workers, Mean: mean, Speedup: speedup})
		b.logger.Info("parallel sweep",
			zap.Int("workers", workers),
			zap.Duration("mean", mean),
			zap.Float64("speedup", speedup))
	}
	return report, nil
}

func (b *Bench) measure(ctx context.Context, eng potential.Engine) (time.Duration, error) {
	cfg := sim.Config{MaxIter: b.cfg.MaxIter, Dt: b.cfg.Dt, Substeps: b.cfg.Substeps}
	var total time.Duration
	for rep := 0; rep < b.cfg.Repetitions; rep++ {
		ps := particle.Clone(b.ensemble)
		r := sim.New(eng, b.cmap, sim.DiscardSink)

		start := time.Now()
		if _, err := r.Run(ctx, ps, cfg); err != nil {
			return 0, err
		}
		total += time.Since(start)
	}
	return total / time.Duration(b.cfg.Repetitions), nil
}
