package viz

import (
	"strings"

	"github.com/san-kum/potsim/internal/particle"
)

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at sub-pixel (x, y); the canvas is Width*2 by Height*4
// dots. Out of range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// PlotParticles draws every particle in the unit square with y pointing up,
// plus a velocity tail of length |v|*tail in unit-square coordinates.
func (c *Canvas) PlotParticles(ps []particle.Particle, tail float64) {
	w, h := float64(c.Width*2), float64(c.Height*4)
	toDot := func(x, y float64) (int, int) {
		return int(x * w), int((1 - y) * h)
	}
	for _, p := range ps {
		x0, y0 := toDot(p.X.X, p.X.Y)
		if tail > 0 {
			x1, y1 := toDot(p.X.X+p.V.X*tail, p.X.Y+p.V.Y*tail)
			c.DrawLine(x0, y0, clampInt(x1, -1, c.Width*2), clampInt(y1, -1, c.Height*4))
		} else {
			c.Set(x0, y0)
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
