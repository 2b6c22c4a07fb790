package atlas

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func continuousRamp() []color.RGBA {
	vals := make([]color.RGBA, Size)
	for i := range vals {
		vals[i] = color.RGBA{R: uint8(i), G: 0, B: 0, A: 255}
	}
	return vals
}

func TestContinuousLookupMatchesRow(t *testing.T) {
	c := NewColormaps()
	require.NoError(t, c.SetContinuous(5, continuousRamp()))

	px := c.LookupContinuous(5, 200)
	assert.Equal(t, uint8(200), px.R)
}

func TestSetContinuousRejectsPaletteRow(t *testing.T) {
	c := NewColormaps()
	err := c.SetContinuous(CPAL032Offset, continuousRamp())
	assert.Error(t, err)
}

func TestPaletteLookupAddressing(t *testing.T) {
	c := NewColormaps()
	palette := make([]color.RGBA, 32)
	for i := range palette {
		palette[i] = color.RGBA{R: 0, G: uint8(i * 8), B: 0, A: 255}
	}
	k := Colormap(CPAL032Offset + 3)
	require.NoError(t, c.SetPalette(k, palette))

	px := c.LookupPalette(k, 10)
	assert.Equal(t, uint8(80), px.G)

	other := c.LookupPalette(Colormap(CPAL032Offset+3+8), 10)
	assert.NotEqual(t, px, other)
}

func TestU8ScalingClampsAndFloors(t *testing.T) {
	assert.Equal(t, uint8(0), U8(-5, 0, 10))
	assert.Equal(t, uint8(0), U8(0, 0, 10))
	assert.Equal(t, uint8(128), U8(5, 0, 10))
	assert.Equal(t, uint8(255), U8(100, 0, 10))
	assert.Equal(t, uint8(0), U8(5, 10, 5))
}
