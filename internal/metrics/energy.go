package metrics

import (
	"math"

	"github.com/san-kum/potsim/internal/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

// TotalEnergy is the kinetic energy (unit masses) plus the pairwise
// electrostatic energy of the ensemble.
func TotalEnergy(ps []particle.Particle) float64 {
	ke := 0.0
	pe := 0.0
	for i := range ps {
		ke += 0.5 * r2.Norm2(ps[i].V)
		for j := i + 1; j < len(ps); j++ {
			d := math.Max(r2.Norm(r2.Sub(ps[i].X, ps[j].X)), particle.MinDistance)
			pe += particle.K * ps[i].Q * ps[j].Q / d
		}
	}
	return ke + pe
}

type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(ps []particle.Particle) {
	e.totalEnergy += TotalEnergy(ps)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative deviation from the first observed energy.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(ps []particle.Particle) {
	energy := TotalEnergy(ps)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
