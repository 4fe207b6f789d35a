package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/san-kum/potsim/internal/colormap"
	"github.com/san-kum/potsim/internal/config"
	"github.com/san-kum/potsim/internal/observability"
	"github.com/san-kum/potsim/internal/particle"
	"github.com/san-kum/potsim/internal/scenario"
	"github.com/san-kum/potsim/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// loadConfig layers defaults, the config file, env, the fields a preset tunes,
// and finally any flag the user set explicitly.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.Scenario = args[0]
	}
	if preset != "" {
		if !config.ApplyPreset(cfg, cfg.Scenario, preset) {
			return nil, fmt.Errorf("unknown preset %q for scenario %s", preset, cfg.Scenario)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("res") {
		cfg.Width, cfg.Height = resolution, resolution
	}
	if flags.Changed("iter") {
		cfg.MaxIter = maxIter
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("substeps") {
		cfg.Substeps = substeps
	}
	if flags.Changed("colormap") {
		cfg.Colormap = cmapName
	}
	if flags.Changed("engine") {
		cfg.Engine = engineKind
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("encoder") {
		cfg.Encoder = encoderName
	}
	if flags.Changed("output") {
		cfg.Output = output
	}
	if flags.Changed("update-scale") {
		cfg.UpdateScale = updateScale
	}
	if flags.Changed("reps") {
		cfg.Bench.Repetitions = repetitions
	}
	if flags.Changed("max-workers") {
		cfg.Bench.MaxWorkers = maxWorkers
	}
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore honours --data even for commands that never load a full config.
func openStore() (*storage.Store, error) {
	dir := dataDir
	if dir == "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		dir = cfg.DataDir
	}
	return storage.New(dir), nil
}

type session struct {
	cfg      *config.Config
	logger   *zap.Logger
	ensemble []particle.Particle
	cmap     *colormap.Map
	store    *storage.Store
}

func newSession(cmd *cobra.Command, args []string) (*session, error) {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return nil, err
	}
	logger := observability.NewLogger(cfg.Log)

	ps, err := scenario.NewRegistry().Generate(cfg.Scenario, cfg.Particles, cfg.Seed)
	if err != nil {
		return nil, err
	}
	cmap, err := colormap.Open(cfg.Colormap)
	if err != nil {
		return nil, err
	}

	store := storage.New(cfg.DataDir)
	if err := store.Init(); err != nil {
		return nil, err
	}

	logger.Debug("session ready",
		zap.String("scenario", cfg.Scenario),
		zap.Int("particles", len(ps)),
		zap.Int64("seed", cfg.Seed),
		zap.String("colormap", cmap.Name()))

	return &session{cfg: cfg, logger: logger, ensemble: ps, cmap: cmap, store: store}, nil
}

func (s *session) metadata() storage.Metadata {
	return storage.Metadata{
		Scenario:  s.cfg.Scenario,
		Particles: len(s.ensemble),
		Seed:      s.cfg.Seed,
		Width:     s.cfg.Width,
		Height:    s.cfg.Height,
		MaxIter:   s.cfg.MaxIter,
		Dt:        s.cfg.Dt,
		Substeps:  s.cfg.Substeps,
		Colormap:  s.cmap.Name(),
	}
}

func (s *session) close() {
	_ = s.logger.Sync()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
