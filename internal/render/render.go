// Package render encodes pixel buffers to output streams.
package render

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"sort"
)

type Encoder interface {
	Name() string
	Encode(w io.Writer, img image.Image) error
}

// PNG writes lossless PNG with a fixed compression level so identical pixels
// always produce identical bytes.
type PNG struct{}

func (PNG) Name() string { return "png" }

func (PNG) Encode(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("render: png: %w", err)
	}
	return nil
}

// PPM writes binary P6 netpbm.
type PPM struct{}

func (PPM) Name() string { return "ppm" }

func (PPM) Encode(w io.Writer, img image.Image) error {
	b := img.Bounds()
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", b.Dx(), b.Dy()); err != nil {
		return fmt.Errorf("render: ppm: %w", err)
	}

	row := make([]byte, 3*b.Dx())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			i := 3 * (x - b.Min.X)
			row[i] = byte(r >> 8)
			row[i+1] = byte(g >> 8)
			row[i+2] = byte(bl >> 8)
		}
		if _, err := bw.Write(row); err != nil {
			return fmt.Errorf("render: ppm: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("render: ppm: %w", err)
	}
	return nil
}

var encoders = map[string]Encoder{
	"png": PNG{},
	"ppm": PPM{},
}

func ByName(name string) (Encoder, error) {
	enc, ok := encoders[name]
	if !ok {
		return nil, fmt.Errorf("unknown encoder: %s (available: %v)", name, Names())
	}
	return enc, nil
}

func Names() []string {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
