// Package metrics observes a particle ensemble over a run.
package metrics

import "github.com/san-kum/potsim/internal/particle"

type Metric interface {
	Name() string
	Observe(ps []particle.Particle)
	Value() float64
	Reset()
}

// Defaults returns the metrics recorded by every run.
func Defaults() []Metric {
	return []Metric{
		NewEnergy(),
		NewEnergyDrift(),
		NewMomentum(),
		NewContainment(),
	}
}

// Snapshot collects the current value of each metric by name.
func Snapshot(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
