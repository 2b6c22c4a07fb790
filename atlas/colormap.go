// Package atlas implements the colormap and font MSDF atlas lookups of
// spec.md §4.M, grounded on esimov-caire's image/draw pixel composition
// idiom for the colormap RGBA buffer and on go-text/typesetting's font
// package for TTF parsing and glyph metrics backing the font packer.
package atlas

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Size is the fixed edge length of the colormap atlas, in pixels.
const Size = 256

// CPAL032Offset is the row at which 32-entry palette-mode colormaps
// begin, per spec.md §4.M.
const CPAL032Offset = 192

// Colormap identifies a row of the atlas.
type Colormap uint8

// Colormaps is the 256x256 RGBA colormap lookup atlas. Rows below
// CPAL032Offset hold a 256-entry continuous colormap; rows at or above
// it each pack eight 32-entry palettes.
type Colormaps struct {
	img *image.RGBA
}

// NewColormaps creates an atlas with every pixel fully transparent.
func NewColormaps() *Colormaps {
	return &Colormaps{img: image.NewRGBA(image.Rect(0, 0, Size, Size))}
}

// SetContinuous writes a 256-entry continuous colormap into row k.
// k must be below CPAL032Offset. values must have exactly 256 entries.
func (c *Colormaps) SetContinuous(k Colormap, values []color.RGBA) error {
	if int(k) >= CPAL032Offset {
		return fmt.Errorf("atlas: colormap %d is a palette-mode row", k)
	}
	if len(values) != Size {
		return fmt.Errorf("atlas: continuous colormap requires %d entries, got %d", Size, len(values))
	}
	row := image.NewRGBA(image.Rect(0, 0, Size, 1))
	for i, v := range values {
		row.SetRGBA(i, 0, v)
	}
	draw.Draw(c.img, image.Rect(0, int(k), Size, int(k)+1), row, image.Point{}, draw.Src)
	return nil
}

// SetPalette writes a 32-entry palette identified by k (a palette-mode
// colormap id at or above CPAL032Offset). values must have exactly 32
// entries.
func (c *Colormaps) SetPalette(k Colormap, values []color.RGBA) error {
	if int(k) < CPAL032Offset {
		return fmt.Errorf("atlas: colormap %d is not a palette-mode id", k)
	}
	if len(values) != 32 {
		return fmt.Errorf("atlas: palette requires 32 entries, got %d", len(values))
	}
	row := CPAL032Offset + (int(k)-CPAL032Offset)/8
	col := 32 * ((int(k) - CPAL032Offset) % 8)
	strip := image.NewRGBA(image.Rect(0, 0, 32, 1))
	for i, v := range values {
		strip.SetRGBA(i, 0, v)
	}
	draw.Draw(c.img, image.Rect(col, row, col+32, row+1), strip, image.Point{}, draw.Src)
	return nil
}

// LookupContinuous returns the pixel for a continuous colormap k at
// value v.
func (c *Colormaps) LookupContinuous(k Colormap, v uint8) color.RGBA {
	return c.img.RGBAAt(int(v), int(k))
}

// LookupPalette returns the pixel for palette-mode colormap k at
// index idx (0..31).
func (c *Colormaps) LookupPalette(k Colormap, idx uint8) color.RGBA {
	row := CPAL032Offset + (int(k)-CPAL032Offset)/8
	col := 32*((int(k)-CPAL032Offset)%8) + int(idx)
	return c.img.RGBAAt(col, row)
}

// Image exposes the underlying atlas bitmap; callers must not mutate
// it other than through SetContinuous/SetPalette.
func (c *Colormaps) Image() *image.RGBA { return c.img }

// U8 implements spec.md §4.M's continuous-colormap scaling function:
// floor(256 * clamp((value-vmin)/(vmax-vmin), 0, 1-eps)).
func U8(value, vmin, vmax float64) uint8 {
	const eps = 1.0 / 4096
	if vmax <= vmin {
		return 0
	}
	t := (value - vmin) / (vmax - vmin)
	if t < 0 {
		t = 0
	}
	if t > 1-eps {
		t = 1 - eps
	}
	v := int(256 * t)
	if v > 255 {
		v = 255
	}
	if v < 0 {
		v = 0
	}
	return uint8(v)
}
