package atlas

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFontAtlasRejectsInvalidTTF(t *testing.T) {
	_, err := BuildFontAtlas([]byte("not a font"), DefaultPackOptions(256))
	assert.Error(t, err)
}

func TestGlyphCellSizePicksSquareGrid(t *testing.T) {
	opts := PackOptions{Size: 100, Codepoints: make([]rune, 9)}
	assert.Equal(t, uint32(33), glyphCellSize(opts))

	opts = PackOptions{Size: 100, Codepoints: make([]rune, 10)}
	assert.Equal(t, uint32(25), glyphCellSize(opts))
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	a := &FontAtlas{
		Width: 4, Height: 4,
		Glyphs: []GlyphRect{{Codepoint: 'A', X: 0, Y: 0, W: 2, H: 2}},
		Pixels: make([]byte, 4*4*3),
	}
	for i := range a.Pixels {
		a.Pixels[i] = byte(i)
	}

	var buf bytes.Buffer
	require.NoError(t, a.Serialize(&buf))

	got, err := DeserializeFontAtlas(&buf)
	require.NoError(t, err)
	assert.Equal(t, a.Width, got.Width)
	assert.Equal(t, a.Height, got.Height)
	require.Len(t, got.Glyphs, 1)
	assert.Equal(t, a.Glyphs[0], got.Glyphs[0])
	assert.Equal(t, a.Pixels, got.Pixels)
}

func TestRenderGlyphCellPeaksAtCenter(t *testing.T) {
	a := &FontAtlas{Width: 8, Height: 8, Pixels: make([]byte, 8*8*3)}
	renderGlyphCell(a, 0, 0, 8, 4)

	center := (4*int(a.Width) + 4) * 3
	corner := (0*int(a.Width) + 0) * 3
	assert.Greater(t, a.Pixels[center], a.Pixels[corner])
}
