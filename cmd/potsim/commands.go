package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/potsim/internal/bench"
	"github.com/san-kum/potsim/internal/metrics"
	"github.com/san-kum/potsim/internal/particle"
	"github.com/san-kum/potsim/internal/potential"
	"github.com/san-kum/potsim/internal/render"
	"github.com/san-kum/potsim/internal/sim"
	"github.com/san-kum/potsim/internal/storage"
	"github.com/san-kum/potsim/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.close()
	cfg := s.cfg

	enc, err := render.ByName(cfg.Encoder)
	if err != nil {
		return err
	}
	engine, err := potential.New(cfg.Engine, cfg.Width, cfg.Height,
		potential.WithWorkers(cfg.Workers),
		potential.WithEncoder(enc),
		potential.WithLogger(s.logger))
	if err != nil {
		return err
	}

	var sink sim.FrameSink = sim.DiscardSink
	if cfg.Output != "" {
		sink = sim.FileSink{Pattern: cfg.Output}
	}

	runner := sim.New(engine, s.cmap, sink)
	runner.SetLogger(s.logger)
	for _, m := range metrics.Defaults() {
		runner.AddMetric(m)
	}

	ctx, cancel := signalContext()
	defer cancel()

	ps := particle.Clone(s.ensemble)
	fmt.Printf("running %s with %d particles on the %s engine...\n", cfg.Scenario, len(ps), engine.Name())
	result, err := runner.Run(ctx, ps, sim.Config{
		MaxIter:     cfg.MaxIter,
		Dt:          cfg.Dt,
		Substeps:    cfg.Substeps,
		UpdateScale: cfg.UpdateScale,
	})
	if err != nil {
		if result != nil {
			s.logger.Warn("run aborted", zap.Int("completed", result.Iterations), zap.Error(err))
		}
		return err
	}

	meta := s.metadata()
	meta.Engine = engine.Name()
	if p, ok := engine.(*potential.Parallel); ok {
		meta.Workers = p.Workers()
	}
	meta.Elapsed = result.Elapsed.Seconds()
	meta.Lo, meta.Hi = result.Extent.Lo, result.Extent.Hi
	meta.Metrics = result.Metrics

	runID, err := s.store.SaveRun(meta, ps)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("iterations: %d\n", result.Iterations)
	fmt.Printf("field range: [%g, %g]\n", result.Extent.Lo, result.Extent.Hi)
	printMetrics(result.Metrics)
	return nil
}

func benchScenario(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.close()
	cfg := s.cfg

	b, err := bench.New(bench.Config{
		Width:       cfg.Width,
		Height:      cfg.Height,
		MaxIter:     cfg.MaxIter,
		Dt:          cfg.Dt,
		Substeps:    cfg.Substeps,
		Repetitions: cfg.Bench.Repetitions,
		MaxWorkers:  cfg.Bench.MaxWorkers,
	}, s.ensemble, s.cmap, s.logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("benchmarking %s: %d particles, %dx%d grid, %d iterations, %d repetitions\n",
		cfg.Scenario, len(s.ensemble), cfg.Width, cfg.Height, cfg.MaxIter, cfg.Bench.Repetitions)
	report, err := b.Run(ctx)
	if err != nil {
		return err
	}

	meta := s.metadata()
	meta.Elapsed = report.Serial.Seconds()
	best := report.Best()
	meta.Workers = best.Workers
	meta.Metrics = map[string]float64{"best_speedup": best.Speedup}
	benchID, err := s.store.SaveBench(meta, report)
	if err != nil {
		return err
	}

	if datFile != "" {
		f, err := os.Create(datFile)
		if err != nil {
			return err
		}
		if err := report.WriteDat(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tMEAN\tSPEEDUP")
	fmt.Fprintf(w, "serial\t%v\t1.00\n", report.Serial)
	for _, row := range report.Rows {
		fmt.Fprintf(w, "%d\t%v\t%.2f\n", row.Workers, row.Mean, row.Speedup)
	}
	w.Flush()
	fmt.Printf("\nbench id: %s\n", benchID)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.close()
	cfg := s.cfg

	serial, err := potential.NewSerial(cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	par, err := potential.NewParallel(cfg.Width, cfg.Height, potential.WithWorkers(cfg.Workers))
	if err != nil {
		return err
	}
	engines := []potential.Engine{par, serial}
	if cfg.Engine == potential.KindSerial {
		engines = []potential.Engine{serial, par}
	}

	model, err := viz.NewModel(engines, s.cmap, s.ensemble, sim.Config{
		MaxIter:     cfg.MaxIter,
		Dt:          cfg.Dt,
		Substeps:    cfg.Substeps,
		UpdateScale: cfg.UpdateScale,
	})
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(viz.Model); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}

func listRecords(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	records, err := st.List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tSCENARIO\tPARTICLES\tGRID\tITER\tENGINE\tTIMESTAMP")
	for _, r := range records {
		engine := r.Engine
		if engine == "" {
			engine = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%dx%d\t%d\t%s\t%s\n",
			r.ID, r.Kind, r.Scenario, r.Particles, r.Width, r.Height, r.MaxIter, engine,
			r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func showRecord(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("id: %s\n", meta.ID)
	fmt.Printf("kind: %s\n", meta.Kind)
	fmt.Printf("scenario: %s (%d particles, seed %d)\n", meta.Scenario, meta.Particles, meta.Seed)
	fmt.Printf("grid: %dx%d, %d iterations, dt %g, %d sub-steps\n",
		meta.Width, meta.Height, meta.MaxIter, meta.Dt, meta.Substeps)

	switch meta.Kind {
	case storage.KindBench:
		report, err := st.LoadBench(meta.ID)
		if err != nil {
			return err
		}
		if len(report.Rows) == 0 {
			fmt.Println("\nno sweep rows")
			return nil
		}
		speedups := make([]float64, len(report.Rows))
		for i, row := range report.Rows {
			speedups[i] = row.Speedup
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(speedups,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("speedup vs workers (1..n)")))
		best := report.Best()
		fmt.Printf("\nbest: %.2fx with %d workers\n", best.Speedup, best.Workers)
	default:
		ps, err := st.LoadParticles(meta.ID)
		if err != nil {
			return err
		}
		fmt.Printf("engine: %s, elapsed %.3fs\n", meta.Engine, meta.Elapsed)
		fmt.Printf("field range: [%g, %g]\n", meta.Lo, meta.Hi)
		fmt.Printf("final particles: %d\n", len(ps))
		printMetrics(meta.Metrics)
	}
	return nil
}

func exportRecord(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	if exportOut == "" {
		return st.Export(os.Stdout, args[0])
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return err
	}
	if err := st.Export(f, args[0]); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", args[0], exportOut)
	return nil
}

func printMetrics(ms map[string]float64) {
	if len(ms) == 0 {
		return
	}
	names := make([]string, 0, len(ms))
	for name := range ms {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, ms[name])
	}
}
