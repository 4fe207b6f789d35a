package colormap

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/crazy3lf/colorconv"
	"github.com/lucasb-eyer/go-colorful"
)

const tableSize = 256

var parulaStops = []string{
	"#352a87", "#0363e1", "#1485d4", "#06a7c6", "#38b99e",
	"#92bf73", "#d9ba56", "#fcce2e", "#f9fb0e",
}

var builtins = map[string]func() ([]color.RGBA, error){
	"parula": parula,
	"hsv":    hsv,
	"gray":   gray,
}

// Named returns a fresh map for a built-in ramp.
func Named(name string) (*Map, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown colormap: %s (available: %v)", name, Names())
	}
	table, err := build()
	if err != nil {
		return nil, err
	}
	return New(name, table)
}

func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open resolves a built-in name first and falls back to an image asset path.
func Open(name string) (*Map, error) {
	if _, ok := builtins[name]; ok {
		return Named(name)
	}
	return Load(name)
}

func parula() ([]color.RGBA, error) {
	stops := make([]colorful.Color, len(parulaStops))
	for i, hex := range parulaStops {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("colormap: parula stop %s: %w", hex, err)
		}
		stops[i] = c
	}

	table := make([]color.RGBA, tableSize)
	segments := float64(len(stops) - 1)
	for i := range table {
		t := float64(i) / float64(tableSize-1) * segments
		k := int(t)
		if k >= len(stops)-1 {
			k = len(stops) - 2
		}
		c := stops[k].BlendLab(stops[k+1], t-float64(k)).Clamped()
		r, g, b := c.RGB255()
		table[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return table, nil
}

// hsv sweeps hue from blue (low) to red (high).
func hsv() ([]color.RGBA, error) {
	table := make([]color.RGBA, tableSize)
	for i := range table {
		hue := 240 * (1 - float64(i)/float64(tableSize-1))
		r, g, b, err := colorconv.HSVToRGB(hue, 1, 1)
		if err != nil {
			return nil, fmt.Errorf("colormap: hsv hue %.1f: %w", hue, err)
		}
		table[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return table, nil
}

func gray() ([]color.RGBA, error) {
	table := make([]color.RGBA, tableSize)
	for i := range table {
		v := uint8(i)
		table[i] = color.RGBA{R: v, G: v, B: v, A: 255}
	}
	return table, nil
}
