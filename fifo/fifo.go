// Package fifo provides a thread-safe bounded FIFO of pointers, a
// standalone single-queue type; deq.Deq and requester.Requester keep
// their own internal queues and do not use it.
//
// A FIFO is multi-producer/single-consumer: any number of goroutines
// may enqueue concurrently, but only one goroutine is expected to
// dequeue at a time (the dequeue loop itself may be safely called from
// more than one goroutine, but doing so gives up the ordering
// guarantee documented on Enqueue).
package fifo

import (
	"sync"

	"github.com/datoviz/scene/alloc"
)

// FIFO is a bounded ring buffer of pointers.
type FIFO struct {
	mu       sync.Mutex
	notEmpty sync.Cond
	notFull  sync.Cond
	buf      []any
	head     int
	count    int
	empty    alloc.Atomic32
	closed   bool
}

// New creates a FIFO with the given fixed capacity.
func New(capacity int) *FIFO {
	if capacity <= 0 {
		capacity = 1
	}
	f := &FIFO{buf: make([]any, capacity)}
	f.notEmpty.L = &f.mu
	f.notFull.L = &f.mu
	f.empty.Init(1)
	return f
}

// Enqueue appends v to the tail of the queue, blocking while the queue
// is full. Within a single calling goroutine, insertion order relative
// to other Enqueue/EnqueueFirst calls from that goroutine is preserved.
func (f *FIFO) Enqueue(v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for f.count == len(f.buf) && !f.closed {
		f.notFull.Wait()
	}
	if f.closed {
		return
	}
	tail := (f.head + f.count) % len(f.buf)
	f.buf[tail] = v
	f.count++
	f.empty.Set(0)
	f.notEmpty.Signal()
}

// EnqueueFirst inserts v at the head of the queue (LIFO-style priority
// insertion), blocking while the queue is full.
func (f *FIFO) EnqueueFirst(v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for f.count == len(f.buf) && !f.closed {
		f.notFull.Wait()
	}
	if f.closed {
		return
	}
	f.head = (f.head - 1 + len(f.buf)) % len(f.buf)
	f.buf[f.head] = v
	f.count++
	f.empty.Set(0)
	f.notEmpty.Signal()
}

// Dequeue removes and returns the item at the head of the queue.
// If wait is true and the queue is empty, Dequeue blocks until an item
// is available or the FIFO is destroyed. If wait is false, Dequeue
// returns (nil, false) immediately when the queue is empty.
func (f *FIFO) Dequeue(wait bool) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for f.count == 0 {
		if !wait || f.closed {
			return nil, false
		}
		f.notEmpty.Wait()
		if f.closed && f.count == 0 {
			return nil, false
		}
	}
	v := f.buf[f.head]
	f.buf[f.head] = nil
	f.head = (f.head + 1) % len(f.buf)
	f.count--
	if f.count == 0 {
		f.empty.Set(1)
	}
	f.notFull.Signal()
	return v, true
}

// Size returns the current number of queued items.
func (f *FIFO) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

// IsEmpty reports whether the queue is currently empty, using the
// atomic indicator rather than acquiring the main lock.
func (f *FIFO) IsEmpty() bool { return f.empty.Get() != 0 }

// Discard reduces the queue to at most its most recent maxSize
// elements, dropping the oldest entries first.
func (f *FIFO) Discard(maxSize int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if maxSize < 0 {
		maxSize = 0
	}
	drop := f.count - maxSize
	for i := 0; i < drop; i++ {
		f.buf[f.head] = nil
		f.head = (f.head + 1) % len(f.buf)
		f.count--
	}
	if f.count == 0 {
		f.empty.Set(1)
	}
	if drop > 0 {
		f.notFull.Broadcast()
	}
}

// Reset empties the queue without destroying it.
func (f *FIFO) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.buf {
		f.buf[i] = nil
	}
	f.head, f.count = 0, 0
	f.empty.Set(1)
	f.notFull.Broadcast()
}

// Destroy wakes any blocked Enqueue/Dequeue callers and marks the FIFO
// closed. After Destroy, Enqueue is a no-op and Dequeue(wait) no longer
// blocks.
func (f *FIFO) Destroy() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.notEmpty.Broadcast()
	f.notFull.Broadcast()
}
