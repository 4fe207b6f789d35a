package scenario

import (
	"math"
	"testing"

	"github.com/san-kum/potsim/internal/particle"
)

func netCharge(ps []particle.Particle) float64 {
	q := 0.0
	for _, p := range ps {
		q += p.Q
	}
	return q
}

func inUnitSquare(ps []particle.Particle) bool {
	for _, p := range ps {
		if p.X.X < 0 || p.X.X >= 1 || p.X.Y < 0 || p.X.Y >= 1 {
			return false
		}
	}
	return true
}

func TestRegistryGenerateAll(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.Names() {
		for _, n := range []int{1, 2, 25} {
			ps, err := r.Generate(name, n, 42)
			if err != nil {
				t.Fatalf("%s(%d): %v", name, n, err)
			}
			if len(ps) == 0 {
				t.Errorf("%s(%d): empty ensemble", name, n)
			}
			if !inUnitSquare(ps) {
				t.Errorf("%s(%d): particles outside the unit square", name, n)
			}
		}
	}
}

func TestRegistryUnknown(t *testing.T) {
	if _, err := NewRegistry().Generate("lattice", 4, 0); err == nil {
		t.Error("expected error for unknown scenario")
	}
}

func TestRegistryRejectsInvalidOutput(t *testing.T) {
	r := NewRegistry()
	r.Register("broken", func(int, int64) ([]particle.Particle, error) {
		return []particle.Particle{particle.New(math.NaN(), 0, 1)}, nil
	})
	if _, err := r.Generate("broken", 1, 0); err == nil {
		t.Error("expected validation error")
	}
}

func TestCountValidation(t *testing.T) {
	for _, g := range []Generator{Crystal, Collision, Random, Cloud} {
		if _, err := g(0, 1); err == nil {
			t.Error("expected error for zero particles")
		}
	}
	if _, err := Cloud(cloudLattice*cloudLattice+1, 1); err == nil {
		t.Error("expected error for oversized cloud")
	}
}

func TestBasicIsNeutral(t *testing.T) {
	ps, _ := Basic(0, 0)
	if len(ps) != 4 {
		t.Errorf("expected 4 particles, got %d", len(ps))
	}
	if netCharge(ps) != 0 {
		t.Errorf("expected neutral ensemble, got %f", netCharge(ps))
	}
}

func TestCrystalLattice(t *testing.T) {
	ps, err := Crystal(9, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 9 {
		t.Fatalf("expected 9 particles, got %d", len(ps))
	}
	if ps[0].X.X != 0.2 || ps[0].X.Y != 0.2 {
		t.Errorf("unexpected first site %v", ps[0].X)
	}
	if math.Abs(ps[8].X.X-0.8) > 1e-12 || math.Abs(ps[8].X.Y-0.8) > 1e-12 {
		t.Errorf("unexpected last site %v", ps[8].X)
	}
	if ps[0].Q != 1 || ps[1].Q != -1 || ps[3].Q != -1 || ps[4].Q != 1 {
		t.Error("charges do not alternate")
	}
}

func TestCollisionApproach(t *testing.T) {
	ps, err := Collision(10, 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range ps {
		if p.Q > 0 && (p.X.X > 0.5 || p.V.X <= 0) {
			t.Errorf("positive particle not on the left moving right: %+v", p)
		}
		if p.Q < 0 && (p.X.X < 0.5 || p.V.X >= 0) {
			t.Errorf("negative particle not on the right moving left: %+v", p)
		}
	}
	if netCharge(ps) != 0 {
		t.Errorf("expected neutral ensemble, got %f", netCharge(ps))
	}
}

func TestSeededDeterminism(t *testing.T) {
	for _, g := range []Generator{Random, Collision, Cloud} {
		a, _ := g(16, 11)
		b, _ := g(16, 11)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("same seed produced different ensembles at %d", i)
			}
		}
	}

	a, _ := Random(16, 1)
	b, _ := Random(16, 2)
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical ensembles")
	}
}

func TestCloudCharges(t *testing.T) {
	ps, err := Cloud(7, 5)
	if err != nil {
		t.Fatal(err)
	}
	pos := 0
	for _, p := range ps {
		if p.Q > 0 {
			pos++
		}
	}
	if pos != 4 {
		t.Errorf("expected 4 positive charges, got %d", pos)
	}
}
