package particle

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// K is the Coulomb constant in natural units.
	K = 1.0

	// MinDistance is the smallest separation used by the potential and force laws.
	MinDistance = 1e-6
)

var (
	ErrEmpty   = errors.New("particle: empty ensemble")
	ErrInvalid = errors.New("particle: invalid particle (NaN or Inf detected)")
)

type Particle struct {
	X r2.Vec // position
	P r2.Vec // position before the last integration step
	V r2.Vec // velocity
	F r2.Vec // net force from the last force phase
	Q float64
}

// New returns a particle at rest at (x, y) with charge q.
func New(x, y, q float64) Particle {
	pos := r2.Vec{X: x, Y: y}
	return Particle{X: pos, P: pos, Q: q}
}

// PotentialAt returns the potential induced by p at pt.
func (p *Particle) PotentialAt(pt r2.Vec) float64 {
	d := r2.Norm(r2.Sub(p.X, pt))
	if d < MinDistance {
		d = MinDistance
	}
	return K * p.Q / d
}

// Force returns the force p experiences due to other.
func (p *Particle) Force(other *Particle) r2.Vec {
	sep := r2.Sub(p.X, other.X)
	d := r2.Norm(sep)
	if d == 0 {
		return r2.Vec{}
	}
	r := d
	if r < MinDistance {
		r = MinDistance
	}
	mag := K * p.Q * other.Q / (r * r)
	return r2.Scale(mag/d, sep)
}

func (p *Particle) Valid() bool {
	return finite(p.Q) && finite(p.X.X) && finite(p.X.Y) && finite(p.V.X) && finite(p.V.Y)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate checks that ps is non-empty and every particle is finite.
func Validate(ps []Particle) error {
	if len(ps) == 0 {
		return ErrEmpty
	}
	for i := range ps {
		if !ps[i].Valid() {
			return fmt.Errorf("%w: index %d", ErrInvalid, i)
		}
	}
	return nil
}

func Clone(ps []Particle) []Particle {
	c := make([]Particle, len(ps))
	copy(c, ps)
	return c
}
