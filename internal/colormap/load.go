package colormap

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Load reads a colormap strip from an image file. Wide images are sampled along
// their middle row left to right, tall images along their middle column bottom
// to top.
func Load(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("colormap: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("colormap: decode %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return New(name, sample(img))
}

func sample(img image.Image) []color.RGBA {
	b := img.Bounds()
	var table []color.RGBA
	if b.Dx() >= b.Dy() {
		y := b.Min.Y + b.Dy()/2
		table = make([]color.RGBA, 0, b.Dx())
		for x := b.Min.X; x < b.Max.X; x++ {
			table = append(table, toRGBA(img.At(x, y)))
		}
	} else {
		x := b.Min.X + b.Dx()/2
		table = make([]color.RGBA, 0, b.Dy())
		for y := b.Max.Y - 1; y >= b.Min.Y; y-- {
			table = append(table, toRGBA(img.At(x, y)))
		}
	}
	return table
}

func toRGBA(c color.Color) color.RGBA {
	r, g, b, _ := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255}
}
