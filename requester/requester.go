// Package requester implements the thin FIFO of committed batches
// described in spec.md §4.E: a thread-safe queue that accepts shallow
// copies of committed batches and hands them, in order, to whatever
// consumer drains the queue and applies each request to the renderer.
package requester

import (
	"sync"

	"github.com/datoviz/scene/internal/config"
	"github.com/datoviz/scene/protocol"
)

// Requester is a FIFO of committed batches. Its methods are safe for
// concurrent use.
type Requester struct {
	mu    sync.Mutex
	ids   *protocol.IDAllocator
	owns  bool
	queue []*protocol.Batch
}

// New creates a Requester. If alloc is nil, an IDAllocator is created
// and owned by the Requester; Destroy then releases it, matching
// spec.md §4.E ("destroy also destroys the underlying PRNG when the
// last requester is torn down").
func New(alloc *protocol.IDAllocator) *Requester {
	owns := alloc == nil
	if owns {
		alloc = protocol.NewIDAllocator()
	}
	return &Requester{ids: alloc, owns: owns}
}

// IDAllocator returns the id allocator backing batches created for
// this Requester's convenience (callers may also build batches with
// their own allocator and still Commit them here).
func (r *Requester) IDAllocator() *protocol.IDAllocator {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ids
}

// Commit pushes a shallow copy of b: the copy shares b's underlying
// request array and does not own b's deep-copied upload buffers.
func (r *Requester) Commit(b *protocol.Batch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = append(r.queue, b.ShallowCopy())
}

// Flush moves every queued batch into a freshly allocated slice and
// empties the queue. The caller owns the returned slice; the
// underlying request storage remains owned by whoever created each
// batch. When dumping is enabled, each flushed batch is dumped.
func (r *Requester) Flush() []*protocol.Batch {
	r.mu.Lock()
	out := make([]*protocol.Batch, len(r.queue))
	copy(out, r.queue)
	r.queue = r.queue[:0]
	r.mu.Unlock()
	if config.DumpEnabled() {
		for _, b := range out {
			_ = dumpForDebug(b)
		}
	}
	return out
}

// Len reports the number of batches currently queued.
func (r *Requester) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// Destroy releases the Requester's owned IDAllocator, if any.
func (r *Requester) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = nil
	if r.owns {
		r.ids = nil
	}
}

func dumpForDebug(b *protocol.Batch) error {
	return protocol.Dump(config.DumpFilename(), b)
}
