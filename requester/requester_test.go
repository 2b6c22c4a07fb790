package requester

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datoviz/scene/protocol"
)

func TestCommitFlushOrder(t *testing.T) {
	r := New(nil)
	var batches []*protocol.Batch
	for i := 0; i < 3; i++ {
		b := protocol.NewBatch(r.IDAllocator())
		b.NewCanvas(uint32(i), uint32(i))
		batches = append(batches, b)
		r.Commit(b)
	}
	assert.Equal(t, 3, r.Len())

	flushed := r.Flush()
	require.Len(t, flushed, 3)
	assert.Equal(t, 0, r.Len())
	for i, b := range flushed {
		assert.Equal(t, batches[i].Requests(), b.Requests())
	}
}

func TestFlushEmptiesQueue(t *testing.T) {
	r := New(nil)
	b := protocol.NewBatch(r.IDAllocator())
	b.NewCanvas(1, 1)
	r.Commit(b)
	r.Flush()
	assert.Empty(t, r.Flush())
}

func TestCommitSharesRequestArray(t *testing.T) {
	r := New(nil)
	b := protocol.NewBatch(r.IDAllocator())
	b.NewCanvas(1, 1)
	r.Commit(b)
	flushed := r.Flush()
	// Mutating the original's backing array is visible through the
	// shallow copy, demonstrating it aliases storage rather than
	// owning a fresh copy.
	orig := b.Requests()
	copied := flushed[0].Requests()
	assert.Equal(t, len(orig), len(copied))
	orig[0].Desc = "mutated"
	assert.Equal(t, "mutated", copied[0].Desc)
}
