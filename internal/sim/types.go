package sim

import (
	"fmt"
	"time"

	"github.com/san-kum/potsim/internal/field"
	"github.com/san-kum/potsim/internal/particle"
	"github.com/san-kum/potsim/internal/potential"
)

// ColorMap is a colormap whose scale the runner can move.
type ColorMap interface {
	potential.ColorMap
	SetScale(lo, hi float64)
}

type Observer interface {
	OnIteration(iter int, ext field.Extent, ps []particle.Particle)
}

type Config struct {
	MaxIter  int
	Dt       float64
	Substeps int
	// UpdateScale rescales the colormap to every frame's extent instead of
	// keeping the first frame's.
	UpdateScale bool
}

type Result struct {
	Iterations int
	Extent     field.Extent
	Extents    []field.Extent
	Metrics    map[string]float64
	Elapsed    time.Duration
}

// RunError wraps an engine or sink failure with the iteration it aborted.
type RunError struct {
	Iteration int
	Op        string
	Wrapped   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("iteration %d: %s: %v", e.Iteration, e.Op, e.Wrapped)
}

func (e *RunError) Unwrap() error {
	return e.Wrapped
}
