// Package scenario generates initial particle ensembles.
package scenario

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/aquilax/go-perlin"
	"github.com/san-kum/potsim/internal/particle"
)

// Generator builds an ensemble of about n particles. Generators with a fixed
// layout ignore n.
type Generator func(n int, seed int64) ([]particle.Particle, error)

type Registry struct {
	generators map[string]Generator
}

func NewRegistry() *Registry {
	r := &Registry{generators: make(map[string]Generator)}

	r.generators["basic"] = Basic
	r.generators["crystal"] = Crystal
	r.generators["collision"] = Collision
	r.generators["random"] = Random
	r.generators["cloud"] = Cloud

	return r
}

func (r *Registry) Register(name string, g Generator) {
	r.generators[name] = g
}

func (r *Registry) Get(name string) (Generator, error) {
	g, ok := r.generators[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario: %s", name)
	}
	return g, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate runs a named generator and validates its output.
func (r *Registry) Generate(name string, n int, seed int64) ([]particle.Particle, error) {
	g, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	ps, err := g(n, seed)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	if err := particle.Validate(ps); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", name, err)
	}
	return ps, nil
}

func checkCount(n int) error {
	if n <= 0 {
		return fmt.Errorf("particle count must be positive, got %d", n)
	}
	return nil
}

// Basic is two opposite charges flanked by two weaker ones.
func Basic(int, int64) ([]particle.Particle, error) {
	return []particle.Particle{
		particle.New(0.35, 0.5, 1),
		particle.New(0.65, 0.5, -1),
		particle.New(0.5, 0.3, 0.5),
		particle.New(0.5, 0.7, -0.5),
	}, nil
}

// Crystal fills a square lattice over [0.2, 0.8]^2 row by row with
// alternating charges.
func Crystal(n int, _ int64) ([]particle.Particle, error) {
	if err := checkCount(n); err != nil {
		return nil, err
	}
	side := int(math.Ceil(math.Sqrt(float64(n))))
	step := 0.0
	if side > 1 {
		step = 0.6 / float64(side-1)
	}

	ps := make([]particle.Particle, 0, n)
	for i := 0; i < n; i++ {
		row, col := i/side, i%side
		q := 1.0
		if (row+col)%2 == 1 {
			q = -1
		}
		x, y := 0.5, 0.5
		if side > 1 {
			x = 0.2 + float64(col)*step
			y = 0.2 + float64(row)*step
		}
		ps = append(ps, particle.New(x, y, q))
	}
	return ps, nil
}

// Collision launches a positive cluster and a negative cluster at each other.
func Collision(n int, seed int64) ([]particle.Particle, error) {
	if err := checkCount(n); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	left := (n + 1) / 2

	ps := make([]particle.Particle, 0, n)
	ps = append(ps, cluster(rng, left, 0.25, 0.5, 1, 2)...)
	ps = append(ps, cluster(rng, n-left, 0.75, 0.5, -1, -2)...)
	return ps, nil
}

func cluster(rng *rand.Rand, n int, cx, cy, q, vx float64) []particle.Particle {
	ps := make([]particle.Particle, n)
	for i := range ps {
		angle := 2 * math.Pi * float64(i) / float64(n)
		radius := 0.05 + 0.05*rng.Float64()
		if n == 1 {
			radius = 0
		}
		p := particle.New(cx+radius*math.Cos(angle), cy+radius*math.Sin(angle), q)
		p.V.X = vx
		ps[i] = p
	}
	return ps
}

// Random scatters unit charges of random sign uniformly over [0.1, 0.9]^2.
func Random(n int, seed int64) ([]particle.Particle, error) {
	if err := checkCount(n); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	ps := make([]particle.Particle, n)
	for i := range ps {
		q := 1.0
		if rng.Intn(2) == 0 {
			q = -1
		}
		ps[i] = particle.New(0.1+0.8*rng.Float64(), 0.1+0.8*rng.Float64(), q)
	}
	return ps, nil
}

const cloudLattice = 48

// Cloud samples Perlin noise on a lattice and places positive charges on the
// highest sites and negative charges on the lowest.
func Cloud(n int, seed int64) ([]particle.Particle, error) {
	if err := checkCount(n); err != nil {
		return nil, err
	}
	if n > cloudLattice*cloudLattice {
		return nil, fmt.Errorf("cloud supports at most %d particles, got %d", cloudLattice*cloudLattice, n)
	}

	noise := perlin.NewPerlin(2, 2, 3, seed)
	type site struct {
		x, y, v float64
	}
	sites := make([]site, 0, cloudLattice*cloudLattice)
	for i := 0; i < cloudLattice; i++ {
		for j := 0; j < cloudLattice; j++ {
			x := 0.1 + 0.8*float64(j)/float64(cloudLattice-1)
			y := 0.1 + 0.8*float64(i)/float64(cloudLattice-1)
			sites = append(sites, site{x: x, y: y, v: noise.Noise2D(4*x, 4*y)})
		}
	}
	sort.SliceStable(sites, func(a, b int) bool { return sites[a].v > sites[b].v })

	pos := (n + 1) / 2
	ps := make([]particle.Particle, 0, n)
	for _, s := range sites[:pos] {
		ps = append(ps, particle.New(s.x, s.y, 1))
	}
	for _, s := range sites[len(sites)-(n-pos):] {
		ps = append(ps, particle.New(s.x, s.y, -1))
	}
	return ps, nil
}
