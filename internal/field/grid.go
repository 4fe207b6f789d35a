// Package field holds the sampled potential grid and the min/max extent
// reduction shared by the engines.
package field

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/spatial/r2"
)

// Grid is a row-major scalar buffer over [0,1)x[0,1) with an owned pixel buffer
// of the same dimensions. Row 0 is y = 0.
type Grid struct {
	Width  int
	Height int
	Values []float64
	Pixels *image.RGBA

	ready bool
}

func New(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("field: invalid grid size %dx%d", width, height)
	}
	return &Grid{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
		Pixels: image.NewRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

func (g *Grid) Index(row, col int) int { return row*g.Width + col }

// Point returns the continuous coordinate sampled by cell (row, col).
func (g *Grid) Point(row, col int) r2.Vec {
	return r2.Vec{
		X: float64(col) / float64(g.Width),
		Y: float64(row) / float64(g.Height),
	}
}

func (g *Grid) At(row, col int) float64 { return g.Values[g.Index(row, col)] }

// Reset marks the grid stale. It must be called before a compute overwrites it.
func (g *Grid) Reset() { g.ready = false }

// MarkReady records that every cell holds a value from the latest compute.
func (g *Grid) MarkReady() { g.ready = true }

// Ready reports whether the grid holds a complete computed field.
func (g *Grid) Ready() bool { return g.ready }

// Extent scans every stored value.
func (g *Grid) Extent() Extent {
	return ExtentOf(g.Values)
}

// Rows returns the extent of rows [start, end).
func (g *Grid) Rows(start, end int) Extent {
	return ExtentOf(g.Values[start*g.Width : end*g.Width])
}
