// Package colormap maps scalar field values to colors.
//
// A [Map] is a lookup table plus a [lo, hi] scale. Values are normalized into
// the scale, clamped and used as a table index:
//
//	cmap, _ := colormap.Open("parula")
//	cmap.SetScale(lo, hi)
//	c, err := cmap.Lookup(v)
//
// Tables come either from a built-in ramp ([Names]) or from an image asset
// ([Load]) whose middle row, left to right, is the ramp.
package colormap
