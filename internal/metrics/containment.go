package metrics

import "github.com/san-kum/potsim/internal/particle"

// Containment is the fraction of observations in which every particle was
// inside the sampled [0,1)x[0,1) domain.
type Containment struct {
	name       string
	violations int
	samples    int
}

func NewContainment() *Containment {
	return &Containment{name: "containment"}
}

func (c *Containment) Name() string { return c.name }

func (c *Containment) Observe(ps []particle.Particle) {
	c.samples++
	for i := range ps {
		x, y := ps[i].X.X, ps[i].X.Y
		if x < 0 || x >= 1 || y < 0 || y >= 1 {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
