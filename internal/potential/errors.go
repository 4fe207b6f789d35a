package potential

import (
	"errors"
	"fmt"
)

var (
	// ErrNoParticles indicates an empty ensemble.
	ErrNoParticles = errors.New("potential: no particles")

	// ErrInvalidParticle indicates a particle with NaN or Inf state.
	ErrInvalidParticle = errors.New("potential: invalid particle")

	// ErrFieldNotComputed indicates a render before any successful compute.
	ErrFieldNotComputed = errors.New("potential: field not computed")

	// ErrInvalidSubsteps indicates a non-positive sub-step count.
	ErrInvalidSubsteps = errors.New("potential: substeps must be positive")

	// ErrInvalidTimestep indicates a non-positive or non-finite time step.
	ErrInvalidTimestep = errors.New("potential: timestep must be positive and finite")

	// ErrUnknownEngine indicates an unknown engine kind.
	ErrUnknownEngine = errors.New("potential: unknown engine")
)

// OpError wraps an error with the operation and engine that produced it.
type OpError struct {
	Op      string
	Engine  string
	Wrapped error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Engine, e.Op, e.Wrapped)
}

func (e *OpError) Unwrap() error {
	return e.Wrapped
}

func opErr(engine, op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Engine: engine, Wrapped: err}
}
