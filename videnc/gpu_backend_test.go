package videnc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignUpRoundsToNextMultiple(t *testing.T) {
	assert.Equal(t, uint32(256), alignUp(1, 256))
	assert.Equal(t, uint32(256), alignUp(256, 256))
	assert.Equal(t, uint32(512), alignUp(257, 256))
	assert.Equal(t, uint32(7680), alignUp(1920*4, 256))
}

func TestCodecGUIDKnownCodecsOnly(t *testing.T) {
	assert.NotEmpty(t, codecGUID(CodecHEVC))
	assert.NotEmpty(t, codecGUID(CodecH264))
	assert.Empty(t, codecGUID(Codec(99)))
}

func TestGPUBackendProbeReflectsCodecSupport(t *testing.T) {
	b := &GPUBackend{}
	cfg := DefaultConfig()
	cfg.Codec = CodecHEVC
	assert.True(t, b.Probe(cfg))
	cfg.Codec = Codec(99)
	assert.False(t, b.Probe(cfg))
}
