package protocol

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildScenario1(t *testing.T) *Batch {
	t.Helper()
	b := NewBatch(NewIDAllocatorSeeded(1, 2))
	canvas := b.NewCanvas(800, 600)
	b.SetBackground(canvas.ID, 0, 0, 0, 255)
	dat := b.NewDat(BufferVertex, 12*3)
	data := make([]byte, 12*3)
	b.UploadDat(dat.ID, 0, data, 0)
	gfx := b.NewGraphics()
	b.SetPrimitive(gfx.ID, TopologyPointList)
	b.BindVertex(gfx.ID, 0, dat.ID)
	b.RecordBeginCmd(canvas.ID)
	b.RecordViewportCmd(canvas.ID, 0, 0, 800, 600)
	b.RecordDrawCmd(canvas.ID, gfx.ID, 0, 3, 0, 1)
	b.RecordEndCmd(canvas.ID)
	return b
}

func TestScenario1MinimalDrawRoundtrip(t *testing.T) {
	b := buildScenario1(t)
	assert.Equal(t, 8, b.Len())

	yamlOut := Sprint(b)
	assert.Contains(t, yamlOut, "version: \"1.0\"")

	dir := t.TempDir()
	path := filepath.Join(dir, "scenario1.batch")
	require.NoError(t, Dump(path, b))

	loaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, b.Len(), loaded.Len())
	assert.Equal(t, Sprint(b), Sprint(loaded))
}

func TestPrintStableAcrossDumpLoad(t *testing.T) {
	b := buildScenario1(t)
	first := Sprint(b)

	dir := t.TempDir()
	path := filepath.Join(dir, "roundtrip.batch")
	require.NoError(t, Dump(path, b))
	reloaded, err := Load(path, nil)
	require.NoError(t, err)
	second := Sprint(reloaded)

	assert.Equal(t, first, second)
}

func TestUploadDatDeepCopiesByDefault(t *testing.T) {
	b := NewBatch(nil)
	data := []byte{1, 2, 3, 4}
	dat := b.NewDat(BufferVertex, 4)
	req := b.UploadDat(dat.ID, 0, data, 0)
	data[0] = 0xff
	assert.Equal(t, byte(1), req.Content.Data[0], "deep copy must not alias caller buffer")
}

func TestUploadDatNoCopyAliasesCallerBuffer(t *testing.T) {
	b := NewBatch(nil)
	data := []byte{1, 2, 3, 4}
	dat := b.NewDat(BufferVertex, 4)
	req := b.UploadDat(dat.ID, 0, data, NoCopy)
	data[0] = 0xff
	assert.Equal(t, byte(0xff), req.Content.Data[0])
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	b := NewBatch(nil)
	b.NewCanvas(10, 10)
	dir := t.TempDir()
	path := filepath.Join(dir, "v.batch")
	require.NoError(t, Dump(path, b))

	// Corrupt the on-disk version by dumping a batch whose requests
	// carry a foreign version string.
	b2 := NewBatch(nil)
	r := b2.NewCanvas(10, 10)
	r.Version = "9.9"
	b2.requests[0] = r
	path2 := filepath.Join(dir, "v2.batch")
	require.NoError(t, Dump(path2, b2))

	_, err := Load(path2, nil)
	assert.Error(t, err)
}

func TestBatchCopyDoesNotInheritOwnership(t *testing.T) {
	b := NewBatch(nil)
	dat := b.NewDat(BufferVertex, 4)
	b.UploadDat(dat.ID, 0, []byte{1, 2, 3, 4}, 0)
	require.Len(t, b.owned, 1)

	cp := b.Copy()
	assert.Equal(t, b.Len(), cp.Len())
	assert.Empty(t, cp.owned)
}

func TestIDAllocatorNeverReturnsZero(t *testing.T) {
	a := NewIDAllocatorSeeded(0, 0)
	for i := 0; i < 1000; i++ {
		assert.NotEqual(t, NoID, a.New())
	}
}
