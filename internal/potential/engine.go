package potential

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/san-kum/potsim/internal/field"
	"github.com/san-kum/potsim/internal/particle"
	"github.com/san-kum/potsim/internal/render"
	"go.uber.org/zap"
)

const (
	KindSerial   = "serial"
	KindParallel = "parallel"
)

type Engine interface {
	Name() string
	Grid() *field.Grid

	// ComputeField samples the potential of ps on every grid cell and returns
	// the observed value range. ps is not modified.
	ComputeField(ps []particle.Particle) (field.Extent, error)

	// MoveParticles advances ps by dt in substeps equal sub-steps.
	MoveParticles(ps []particle.Particle, dt float64, substeps int) error

	// SaveSolution maps the computed field through cmap and writes the image.
	SaveSolution(w io.Writer, cmap ColorMap) error
}

type ColorMap interface {
	Lookup(v float64) (color.RGBA, error)
}

type options struct {
	workers  int
	minChunk int
	encoder  render.Encoder
	logger   *zap.Logger
}

type Option func(*options)

// WithWorkers sets the parallel pool size. Ignored by the serial engine.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithMinChunk sets the smallest number of rows or particles per worker.
func WithMinChunk(n int) Option {
	return func(o *options) { o.minChunk = n }
}

func WithEncoder(enc render.Encoder) Option {
	return func(o *options) { o.encoder = enc }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{
		minChunk: 1,
		encoder:  render.PNG{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.minChunk < 1 {
		o.minChunk = 1
	}
	if o.encoder == nil {
		o.encoder = render.PNG{}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// New returns the engine of the given kind.
func New(kind string, width, height int, opts ...Option) (Engine, error) {
	switch kind {
	case KindSerial:
		return NewSerial(width, height, opts...)
	case KindParallel:
		return NewParallel(width, height, opts...)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, kind)
	}
}

func Kinds() []string { return []string{KindSerial, KindParallel} }

func checkParticles(ps []particle.Particle) error {
	err := particle.Validate(ps)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, particle.ErrEmpty):
		return ErrNoParticles
	default:
		return fmt.Errorf("%w: %v", ErrInvalidParticle, err)
	}
}

func checkStep(ps []particle.Particle, dt float64, substeps int) error {
	if substeps <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSubsteps, substeps)
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTimestep, dt)
	}
	return checkParticles(ps)
}
