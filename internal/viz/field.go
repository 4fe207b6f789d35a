package viz

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/potsim/internal/field"
	"github.com/san-kum/potsim/internal/potential"
)

// Downsample picks a cols x rows color matrix from the computed grid by
// nearest-cell sampling. Row 0 of the result is the top of the domain
// (y close to 1), matching the orientation of saved images.
func Downsample(g *field.Grid, cmap potential.ColorMap, cols, rows int) ([][]color.RGBA, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("viz: invalid view size %dx%d", cols, rows)
	}
	if !g.Ready() {
		return nil, potential.ErrFieldNotComputed
	}

	out := make([][]color.RGBA, rows)
	for r := range out {
		out[r] = make([]color.RGBA, cols)
		gr := g.Height - 1 - r*g.Height/rows
		for c := range out[r] {
			gc := c * g.Width / cols
			rgba, err := cmap.Lookup(g.At(gr, gc))
			if err != nil {
				return nil, fmt.Errorf("viz: colormap: %w", err)
			}
			out[r][c] = rgba
		}
	}
	return out, nil
}

// RenderField draws the field in cols x rows terminal cells. Each cell is an
// upper half block so it carries two vertically stacked samples.
func RenderField(g *field.Grid, cmap potential.ColorMap, cols, rows int) (string, error) {
	cells, err := Downsample(g, cmap, cols, rows*2)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for r := 0; r < rows; r++ {
		top, bottom := cells[2*r], cells[2*r+1]
		for c := 0; c < cols; c++ {
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(hex(top[c]))).
				Background(lipgloss.Color(hex(bottom[c])))
			b.WriteString(style.Render("▀"))
		}
		if r < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

func hex(c color.RGBA) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}
