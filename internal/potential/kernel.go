package potential

import (
	"fmt"

	"github.com/san-kum/potsim/internal/field"
	"github.com/san-kum/potsim/internal/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

// sampleRows fills rows [start, end) and returns their extent. The sum over
// particles is always in ascending index order.
func sampleRows(g *field.Grid, ps []particle.Particle, start, end int) field.Extent {
	ext := field.EmptyExtent()
	for row := start; row < end; row++ {
		for col := 0; col < g.Width; col++ {
			pt := g.Point(row, col)
			v := 0.0
			for k := range ps {
				v += ps[k].PotentialAt(pt)
			}
			g.Values[g.Index(row, col)] = v
			ext.Observe(v)
		}
	}
	return ext
}

// netForce sums the force on ps[i] from every other particle in ascending
// index order. It only reads positions.
func netForce(ps []particle.Particle, i int) r2.Vec {
	f := r2.Vec{}
	for j := range ps {
		if j != i {
			f = r2.Add(f, ps[i].Force(&ps[j]))
		}
	}
	return f
}

// integrate is the semi-implicit Euler update of one particle.
func integrate(p *particle.Particle, ssdt float64) {
	p.V = r2.Add(p.V, r2.Scale(ssdt, p.F))
	p.P = p.X
	p.X = r2.Add(p.X, r2.Scale(ssdt, p.V))
}

// shadeRows writes the pixels of grid rows [start, end). Grid row 0 is the
// bottom image row.
func shadeRows(g *field.Grid, cmap ColorMap, start, end int) error {
	for row := start; row < end; row++ {
		y := g.Height - row - 1
		for col := 0; col < g.Width; col++ {
			c, err := cmap.Lookup(g.At(row, col))
			if err != nil {
				return fmt.Errorf("cell (%d, %d): %w", row, col, err)
			}
			g.Pixels.SetRGBA(col, y, c)
		}
	}
	return nil
}
