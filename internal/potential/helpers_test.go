package potential

import (
	"errors"
	"image/color"
	"math"
	"math/rand"

	"github.com/san-kum/potsim/internal/particle"
)

const abstol = 1e-6

func randomEnsemble(n int, seed int64) []particle.Particle {
	rng := rand.New(rand.NewSource(seed))
	ps := make([]particle.Particle, n)
	for i := range ps {
		q := 0.5 + rng.Float64()
		if rng.Intn(2) == 0 {
			q = -q
		}
		ps[i] = particle.New(0.05+0.9*rng.Float64(), 0.05+0.9*rng.Float64(), q)
	}
	return ps
}

// basicEnsemble is a small fixed layout: a dipole plus two satellites.
func basicEnsemble() []particle.Particle {
	return []particle.Particle{
		particle.New(0.3, 0.5, 1),
		particle.New(0.7, 0.5, -1),
		particle.New(0.5, 0.2, 0.5),
		particle.New(0.5, 0.8, -0.5),
	}
}

// bandMap colors values into bands of a fixed scale.
type bandMap struct {
	lo, hi float64
}

func (b bandMap) Lookup(v float64) (color.RGBA, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return color.RGBA{}, errors.New("non-finite")
	}
	t := (v - b.lo) / (b.hi - b.lo)
	t = math.Max(0, math.Min(1, t))
	g := uint8(t * 255)
	return color.RGBA{R: g, G: 255 - g, B: g / 2, A: 255}, nil
}

type failingMap struct{ err error }

func (f failingMap) Lookup(float64) (color.RGBA, error) { return color.RGBA{}, f.err }

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("stream closed") }

// countingWriter records how many bytes reached the stream.
type countingWriter struct{ n int }

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += len(p)
	return len(p), nil
}
