package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultScenario    = "crystal"
	DefaultParticles   = 25
	DefaultResolution  = 200
	DefaultMaxIter     = 500
	DefaultDt          = 2e-5
	DefaultSubsteps    = 10
	DefaultEngine      = "parallel"
	DefaultColormap    = "parula"
	DefaultEncoder     = "png"
	DefaultOutput      = "results/potential-%06d.png"
	DefaultDataDir     = ".potsim"
	DefaultRepetitions = 10
)

type Config struct {
	Scenario    string      `yaml:"scenario" mapstructure:"scenario"`
	Particles   int         `yaml:"particles" mapstructure:"particles"`
	Seed        int64       `yaml:"seed" mapstructure:"seed"`
	Width       int         `yaml:"width" mapstructure:"width"`
	Height      int         `yaml:"height" mapstructure:"height"`
	MaxIter     int         `yaml:"max_iter" mapstructure:"max_iter"`
	Dt          float64     `yaml:"dt" mapstructure:"dt"`
	Substeps    int         `yaml:"substeps" mapstructure:"substeps"`
	UpdateScale bool        `yaml:"update_scale" mapstructure:"update_scale"`
	Engine      string      `yaml:"engine" mapstructure:"engine"`
	Workers     int         `yaml:"workers" mapstructure:"workers"`
	Colormap    string      `yaml:"colormap" mapstructure:"colormap"`
	Encoder     string      `yaml:"encoder" mapstructure:"encoder"`
	Output      string      `yaml:"output" mapstructure:"output"`
	DataDir     string      `yaml:"data_dir" mapstructure:"data_dir"`
	Bench       BenchConfig `yaml:"bench" mapstructure:"bench"`
	Log         LogConfig   `yaml:"log" mapstructure:"log"`
}

type BenchConfig struct {
	Repetitions int `yaml:"repetitions" mapstructure:"repetitions"`
	// MaxWorkers bounds the worker sweep; zero means runtime.NumCPU.
	MaxWorkers int `yaml:"max_workers" mapstructure:"max_workers"`
}

type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	Format     string `yaml:"format" mapstructure:"format"`
	File       string `yaml:"file" mapstructure:"file"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:  DefaultScenario,
		Particles: DefaultParticles,
		Seed:      1,
		Width:     DefaultResolution,
		Height:    DefaultResolution,
		MaxIter:   DefaultMaxIter,
		Dt:        DefaultDt,
		Substeps:  DefaultSubsteps,
		Engine:    DefaultEngine,
		Colormap:  DefaultColormap,
		Encoder:   DefaultEncoder,
		Output:    DefaultOutput,
		DataDir:   DefaultDataDir,
		Bench: BenchConfig{
			Repetitions: DefaultRepetitions,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// SetDefaults registers every key with viper so env overrides resolve.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("scenario", d.Scenario)
	v.SetDefault("particles", d.Particles)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("width", d.Width)
	v.SetDefault("height", d.Height)
	v.SetDefault("max_iter", d.MaxIter)
	v.SetDefault("dt", d.Dt)
	v.SetDefault("substeps", d.Substeps)
	v.SetDefault("update_scale", d.UpdateScale)
	v.SetDefault("engine", d.Engine)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("colormap", d.Colormap)
	v.SetDefault("encoder", d.Encoder)
	v.SetDefault("output", d.Output)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("bench.repetitions", d.Bench.Repetitions)
	v.SetDefault("bench.max_workers", d.Bench.MaxWorkers)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size", d.Log.MaxSize)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age", d.Log.MaxAge)
	v.SetDefault("log.compress", d.Log.Compress)
}

// NewViper returns a viper instance with defaults and POTSIM_* env overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("POTSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// FromViper decodes and validates a config.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads a config file. An empty path yields defaults plus env overrides.
func Load(path string) (*Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return FromViper(v)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Particles <= 0 {
		errs = append(errs, fmt.Errorf("particles must be positive, got %d", c.Particles))
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("resolution must be positive, got %dx%d", c.Width, c.Height))
	}
	if c.MaxIter <= 0 {
		errs = append(errs, fmt.Errorf("max_iter must be positive, got %d", c.MaxIter))
	}
	if !(c.Dt > 0) {
		errs = append(errs, fmt.Errorf("dt must be positive, got %g", c.Dt))
	}
	if c.Substeps <= 0 {
		errs = append(errs, fmt.Errorf("substeps must be positive, got %d", c.Substeps))
	}
	if c.Engine != "serial" && c.Engine != "parallel" {
		errs = append(errs, fmt.Errorf("engine must be serial or parallel, got %q", c.Engine))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.Bench.Repetitions <= 0 {
		errs = append(errs, fmt.Errorf("bench.repetitions must be positive, got %d", c.Bench.Repetitions))
	}
	if c.Bench.MaxWorkers < 0 {
		errs = append(errs, fmt.Errorf("bench.max_workers must not be negative, got %d", c.Bench.MaxWorkers))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
