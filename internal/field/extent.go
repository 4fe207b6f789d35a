package field

import "math"

// Extent is the observed value range of a field or a partition of it.
type Extent struct {
	Lo float64
	Hi float64
}

// EmptyExtent is the identity of Combine.
func EmptyExtent() Extent {
	return Extent{Lo: math.Inf(1), Hi: math.Inf(-1)}
}

func (e Extent) Empty() bool { return e.Lo > e.Hi }

func (e *Extent) Observe(v float64) {
	if v < e.Lo {
		e.Lo = v
	}
	if v > e.Hi {
		e.Hi = v
	}
}

// Combine merges two partial extents. It is associative and commutative.
func Combine(a, b Extent) Extent {
	return Extent{Lo: math.Min(a.Lo, b.Lo), Hi: math.Max(a.Hi, b.Hi)}
}

func ExtentOf(values []float64) Extent {
	e := EmptyExtent()
	for _, v := range values {
		e.Observe(v)
	}
	return e
}
