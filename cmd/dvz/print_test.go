package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datoviz/scene/protocol"
)

func writeFixtureBatch(t *testing.T) string {
	t.Helper()
	alloc := protocol.NewIDAllocator()
	b := protocol.NewBatch(alloc)
	b.NewCanvas(640, 480)
	b.NewDat(protocol.BufferVertex, 256)

	path := filepath.Join(t.TempDir(), "fixture.batch")
	require.NoError(t, protocol.Dump(path, b))
	return path
}

func TestRunPrintEmitsYAMLStream(t *testing.T) {
	path := writeFixtureBatch(t)

	cmd := printCmd
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, runPrint(cmd, []string{path}))
	assert.Contains(t, out.String(), "version:")
	assert.Contains(t, out.String(), "requests:")
}

func TestRunPrintErrorsOnMissingFile(t *testing.T) {
	cmd := printCmd
	var out bytes.Buffer
	cmd.SetOut(&out)

	err := runPrint(cmd, []string{filepath.Join(t.TempDir(), "nope.batch")})
	assert.Error(t, err)
}
