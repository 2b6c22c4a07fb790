package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReplayReportsAppliedCount(t *testing.T) {
	path := writeFixtureBatch(t)

	cmd := replayCmd
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, runReplay(cmd, []string{path}))
	assert.Contains(t, out.String(), "applied 2 requests across 1 batch(es)")
}

func TestRunReplayErrorsOnMissingFile(t *testing.T) {
	cmd := replayCmd
	var out bytes.Buffer
	cmd.SetOut(&out)

	err := runReplay(cmd, []string{filepath.Join(t.TempDir(), "nope.batch")})
	assert.Error(t, err)
}
