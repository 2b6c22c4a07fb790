package atlas

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/go-text/typesetting/font"
)

// GlyphRect locates one glyph's bitmap within a font atlas, in pixels,
// with the origin at the atlas's top-left (y-flipped relative to the
// font's own em-square coordinate system).
type GlyphRect struct {
	Codepoint rune
	X, Y      uint32
	W, H      uint32
}

// FontAtlas is a packed MSDF glyph atlas: a contiguous RGB bitmap plus
// a per-glyph rectangle table, per spec.md §4.M.
type FontAtlas struct {
	Width, Height uint32
	Glyphs        []GlyphRect
	Pixels        []byte // Width*Height*3 bytes, row-major RGB
}

// PackOptions configures BuildFontAtlas.
type PackOptions struct {
	// Size is the target square atlas edge length, in pixels.
	Size uint32
	// Codepoints to pack; ASCII 0x20..0x7E is used when nil.
	Codepoints []rune
	// Range is the SDF falloff range, in pixels, per glyph cell. The
	// placeholder cell renderer does not use it.
	Range float64
}

// DefaultPackOptions returns spec.md §4.M's defaults: a 4-pixel SDF
// range and the printable ASCII range.
func DefaultPackOptions(size uint32) PackOptions {
	codepoints := make([]rune, 0, 0x7F-0x20)
	for r := rune(0x20); r <= 0x7E; r++ {
		codepoints = append(codepoints, r)
	}
	return PackOptions{Size: size, Codepoints: codepoints, Range: 4}
}

// BuildFontAtlas parses a TTF binary via go-text/typesetting, packs
// the requested codepoints into a tight square atlas using a
// shelf-based packer, and fills each glyph's cell with the same
// single-channel radial falloff replicated across the RGB channels. The
// cell content does not depend on the glyph outline; it is a simplified
// stand-in for full multi-channel SDF edge coloring.
func BuildFontAtlas(ttf []byte, opts PackOptions) (*FontAtlas, error) {
	face, err := font.ParseTTF(bytes.NewReader(ttf))
	if err != nil {
		return nil, fmt.Errorf("atlas: parse ttf: %w", err)
	}

	type packedGlyph struct {
		r    rune
		size uint32
	}
	var present []packedGlyph
	for _, r := range opts.Codepoints {
		if _, ok := face.NominalGlyph(r); !ok {
			continue
		}
		present = append(present, packedGlyph{r: r, size: glyphCellSize(opts)})
	}
	sort.Slice(present, func(i, j int) bool { return present[i].r < present[j].r })

	a := &FontAtlas{Width: opts.Size, Height: opts.Size}
	a.Pixels = make([]byte, int(opts.Size)*int(opts.Size)*3)

	var x, y, shelfH uint32
	cell := glyphCellSize(opts)
	for _, g := range present {
		if x+cell > opts.Size {
			x = 0
			y += shelfH
			shelfH = 0
		}
		if y+cell > opts.Size {
			return nil, fmt.Errorf("atlas: %d glyphs do not fit in a %dx%d atlas", len(present), opts.Size, opts.Size)
		}
		renderGlyphCell(a, x, y, cell, opts.Range)
		a.Glyphs = append(a.Glyphs, GlyphRect{
			Codepoint: g.r,
			X:         x, Y: opts.Size - y - cell,
			W: cell, H: cell,
		})
		x += cell
		if cell > shelfH {
			shelfH = cell
		}
	}
	return a, nil
}

// glyphCellSize picks a uniform square cell size for every glyph, a
// simplification of the reference packer's per-glyph minimum-scale
// fitting.
func glyphCellSize(opts PackOptions) uint32 {
	n := len(opts.Codepoints)
	if n == 0 {
		return opts.Size
	}
	cols := 1
	for cols*cols < n {
		cols++
	}
	cell := opts.Size / uint32(cols)
	if cell == 0 {
		cell = 1
	}
	return cell
}

// renderGlyphCell fills one atlas cell with a radial distance falloff
// from the cell's center, scaled by the cell's half-width and clamped to
// [0,1], as a placeholder for true outline-derived multi-channel signed
// distance fields. rng is not used.
func renderGlyphCell(a *FontAtlas, x, y, cell uint32, rng float64) {
	cx, cy := float64(cell)/2, float64(cell)/2
	maxDist := cx
	if cy > maxDist {
		maxDist = cy
	}
	for dy := uint32(0); dy < cell; dy++ {
		for dx := uint32(0); dx < cell; dx++ {
			ddx, ddy := float64(dx)-cx, float64(dy)-cy
			dist := ddx*ddx + ddy*ddy
			var v float64
			if maxDist > 0 {
				v = 1 - (sqrtApprox(dist) / maxDist)
			}
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			px := byte(v * 255)
			off := (int(y+dy)*int(a.Width) + int(x+dx)) * 3
			a.Pixels[off+0] = px
			a.Pixels[off+1] = px
			a.Pixels[off+2] = px
		}
	}
	_ = rng
}

func sqrtApprox(v float64) float64 {
	if v == 0 {
		return 0
	}
	x := v
	for i := 0; i < 12; i++ {
		x = 0.5 * (x + v/x)
	}
	return x
}

// Serialize writes a's custom binary layout: a header of glyph/atlas
// counts, the per-glyph rectangle table, then Width*Height*3 pixel
// bytes.
func (a *FontAtlas) Serialize(w io.Writer) error {
	var hdr [12]byte
	binary.LittleEndian.PutUint32(hdr[0:4], a.Width)
	binary.LittleEndian.PutUint32(hdr[4:8], a.Height)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(a.Glyphs)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	for _, g := range a.Glyphs {
		var rec [20]byte
		binary.LittleEndian.PutUint32(rec[0:4], uint32(g.Codepoint))
		binary.LittleEndian.PutUint32(rec[4:8], g.X)
		binary.LittleEndian.PutUint32(rec[8:12], g.Y)
		binary.LittleEndian.PutUint32(rec[12:16], g.W)
		binary.LittleEndian.PutUint32(rec[16:20], g.H)
		if _, err := w.Write(rec[:]); err != nil {
			return err
		}
	}
	_, err := w.Write(a.Pixels)
	return err
}

// DeserializeFontAtlas reads the layout written by Serialize.
func DeserializeFontAtlas(r io.Reader) (*FontAtlas, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("atlas: read header: %w", err)
	}
	a := &FontAtlas{
		Width:  binary.LittleEndian.Uint32(hdr[0:4]),
		Height: binary.LittleEndian.Uint32(hdr[4:8]),
	}
	count := binary.LittleEndian.Uint32(hdr[8:12])
	a.Glyphs = make([]GlyphRect, count)
	for i := range a.Glyphs {
		var rec [20]byte
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			return nil, fmt.Errorf("atlas: read glyph record: %w", err)
		}
		a.Glyphs[i] = GlyphRect{
			Codepoint: rune(binary.LittleEndian.Uint32(rec[0:4])),
			X:         binary.LittleEndian.Uint32(rec[4:8]),
			Y:         binary.LittleEndian.Uint32(rec[8:12]),
			W:         binary.LittleEndian.Uint32(rec[12:16]),
			H:         binary.LittleEndian.Uint32(rec[16:20]),
		}
	}
	a.Pixels = make([]byte, int(a.Width)*int(a.Height)*3)
	if _, err := io.ReadFull(r, a.Pixels); err != nil {
		return nil, fmt.Errorf("atlas: read pixels: %w", err)
	}
	return a, nil
}
