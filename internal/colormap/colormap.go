package colormap

import (
	"errors"
	"fmt"
	"image/color"
	"math"
)

var ErrNonFinite = errors.New("colormap: non-finite value")

type Map struct {
	name  string
	table []color.RGBA
	lo    float64
	hi    float64
}

// New builds a map over table with scale [0, 1].
func New(name string, table []color.RGBA) (*Map, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("colormap: %s: empty table", name)
	}
	t := make([]color.RGBA, len(table))
	copy(t, table)
	return &Map{name: name, table: t, lo: 0, hi: 1}, nil
}

func (m *Map) Name() string { return m.name }
func (m *Map) Len() int     { return len(m.table) }

func (m *Map) Scale() (lo, hi float64) { return m.lo, m.hi }

func (m *Map) SetScale(lo, hi float64) {
	m.lo = lo
	m.hi = hi
}

// Lookup returns the color of v. A degenerate scale maps everything to the
// first entry.
func (m *Map) Lookup(v float64) (color.RGBA, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return color.RGBA{}, fmt.Errorf("%w: %v", ErrNonFinite, v)
	}
	return m.table[m.index(v)], nil
}

func (m *Map) index(v float64) int {
	span := m.hi - m.lo
	if !(span > 0) || math.IsInf(span, 0) {
		return 0
	}
	t := (v - m.lo) / span
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return len(m.table) - 1
	}
	return int(t * float64(len(m.table)-1))
}
