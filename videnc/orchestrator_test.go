package videnc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEncoderBackend struct {
	name       string
	probeOK    bool
	initErr    error
	samples    []string
	sampleFunc SampleFunc
}

func (f *fakeEncoderBackend) Name() string           { return f.name }
func (f *fakeEncoderBackend) Probe(cfg Config) bool   { return f.probeOK }
func (f *fakeEncoderBackend) Init(cfg Config) error   { return f.initErr }
func (f *fakeEncoderBackend) Stop()                   {}
func (f *fakeEncoderBackend) Destroy()                {}
func (f *fakeEncoderBackend) Start(frame FrameDescriptor, onSample SampleFunc) error {
	f.sampleFunc = onSample
	return nil
}
func (f *fakeEncoderBackend) Submit(waitValue uint64, frameIdx uint64) error {
	f.sampleFunc([]byte{byte(frameIdx)}, InvalidOffset, 1500, frameIdx == 0)
	return nil
}

func TestDurationAccumulatorSumsToExpectedWithin60FPS(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FPS = 60
	o := &Orchestrator{cfg: cfg}

	var sum uint64
	const n = 600
	for i := 0; i < n; i++ {
		sum += uint64(o.Duration())
	}
	expected := uint64(n) * 90000 / uint64(cfg.FPS)
	diff := int64(sum) - int64(expected)
	if diff < 0 {
		diff = -diff
	}
	assert.Less(t, diff, int64(cfg.FPS))
}

func TestNewPrefersProbedNamedBackendOverAuto(t *testing.T) {
	gpu := &fakeEncoderBackend{name: "gpu", probeOK: true}
	cpu := &fakeEncoderBackend{name: "cpu", probeOK: true}
	cfg := DefaultConfig()
	cfg.Backend = "cpu"
	cfg.Mux = MuxPost

	dir := t.TempDir()
	cfg.MP4Path = filepath.Join(dir, "out.mp4")
	cfg.RawPath = filepath.Join(dir, "out.h26x")

	o, err := New(cfg, gpu, cpu)
	require.NoError(t, err)
	assert.Equal(t, "cpu", o.backend.Name())
}

func TestNewFallsBackWhenInitFails(t *testing.T) {
	gpu := &fakeEncoderBackend{name: "gpu", probeOK: true, initErr: assertErr("gpu init failed")}
	cpu := &fakeEncoderBackend{name: "cpu", probeOK: true}
	cfg := DefaultConfig()

	o, err := New(cfg, gpu, cpu)
	require.NoError(t, err)
	assert.Equal(t, "cpu", o.backend.Name())
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

func TestOrchestratorPostMuxRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Mux = MuxPost
	cfg.MP4Path = filepath.Join(dir, "out.mp4")
	cfg.RawPath = filepath.Join(dir, "out.h26x")

	backend := &fakeEncoderBackend{name: "cpu", probeOK: true}
	o, err := NewWithBackend(backend, cfg)
	require.NoError(t, err)

	require.NoError(t, o.Start(FrameDescriptor{}, nil))
	for i := 0; i < 3; i++ {
		require.NoError(t, o.Submit(0))
	}
	require.NoError(t, o.Stop())

	info, err := os.Stat(cfg.MP4Path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestOrchestratorStreamingMux(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Mux = MuxStreaming
	cfg.MP4Path = filepath.Join(dir, "out.mp4")

	backend := &fakeEncoderBackend{name: "cpu", probeOK: true}
	o, err := NewWithBackend(backend, cfg)
	require.NoError(t, err)

	require.NoError(t, o.Start(FrameDescriptor{}, nil))
	require.NoError(t, o.Submit(0))
	require.NoError(t, o.Stop())

	info, err := os.Stat(cfg.MP4Path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
