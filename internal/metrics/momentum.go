package metrics

import (
	"github.com/san-kum/potsim/internal/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

// Momentum is the magnitude of the total momentum (unit masses) at the latest
// observation. Pairwise forces are antisymmetric, so it stays at its initial
// value up to rounding.
type Momentum struct {
	name  string
	value float64
}

func NewMomentum() *Momentum {
	return &Momentum{name: "momentum"}
}

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Observe(ps []particle.Particle) {
	total := r2.Vec{}
	for i := range ps {
		total = r2.Add(total, ps[i].V)
	}
	m.value = r2.Norm(total)
}

func (m *Momentum) Value() float64 { return m.value }

func (m *Momentum) Reset() { m.value = 0 }
