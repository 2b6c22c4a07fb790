// Package alloc provides a pluggable memory allocator indirection and
// a lock-free 32-bit atomic counter. Within this module only the fifo
// package imports it, using Atomic32 as its "is empty" indicator.
package alloc

import (
	"sync/atomic"
	"unsafe"
)

// Table is the set of functions backing the active allocator.
// Every field must be non-nil in a valid Table.
type Table struct {
	Malloc   func(size uintptr) unsafe.Pointer
	Calloc   func(n, size uintptr) unsafe.Pointer
	Realloc  func(p unsafe.Pointer, size uintptr) unsafe.Pointer
	Free     func(p unsafe.Pointer)
	AlignedAlloc func(align, size uintptr) unsafe.Pointer
	AlignedFree  func(p unsafe.Pointer)
}

var (
	systemTable = newSystemTable()
	active      = systemTable
)

// UseSystem selects the default Go-runtime-backed allocator.
func UseSystem() { active = systemTable }

// UseMimalloc selects the mimalloc-backed allocator.
// Since this module has no cgo dependency on mimalloc, it falls back
// to the system table and reports that it did so; callers that need a
// real mimalloc binding should supply one via Set.
func UseMimalloc() bool {
	active = systemTable
	return false
}

// Set installs a custom allocator table. Passing nil reverts to the
// configuration-time default (the system table).
func Set(t *Table) {
	if t == nil {
		active = systemTable
		return
	}
	active = t
}

// Active returns the currently active allocator table.
func Active() *Table { return active }

func newSystemTable() *Table {
	// The system table keeps Go-allocated backing arrays alive via a
	// pinned byte slice referenced by a map keyed on the returned
	// pointer, since unsafe.Pointer alone does not keep the GC from
	// collecting the slice header.
	live := make(map[unsafe.Pointer][]byte)
	alloc := func(size uintptr) unsafe.Pointer {
		if size == 0 {
			size = 1
		}
		b := make([]byte, size)
		p := unsafe.Pointer(&b[0])
		live[p] = b
		return p
	}
	return &Table{
		Malloc: alloc,
		Calloc: func(n, size uintptr) unsafe.Pointer { return alloc(n * size) },
		Realloc: func(p unsafe.Pointer, size uintptr) unsafe.Pointer {
			old, ok := live[p]
			np := alloc(size)
			if ok {
				nb := live[np]
				copy(nb, old)
				delete(live, p)
			}
			return np
		},
		Free: func(p unsafe.Pointer) { delete(live, p) },
		AlignedAlloc: func(align, size uintptr) unsafe.Pointer {
			align = NextPow2(align, unsafe.Sizeof(uintptr(0)))
			size = AlignUp(size, align)
			return alloc(size)
		},
		AlignedFree: func(p unsafe.Pointer) { delete(live, p) },
	}
}

// NextPow2 rounds v up to the next power of two that is at least min.
func NextPow2(v, min uintptr) uintptr {
	p := min
	for p < v {
		p <<= 1
	}
	return p
}

// AlignUp rounds size up to the nearest multiple of align.
// align must be a power of two.
func AlignUp(size, align uintptr) uintptr {
	return (size + align - 1) &^ (align - 1)
}

// Atomic32 is an opaque wrapper around a signed 32-bit counter, used by
// fifo as its "is empty" indicator.
type Atomic32 struct {
	v int32
}

// NewAtomic32 returns an Atomic32 initialized to v.
func NewAtomic32(v int32) *Atomic32 { a := &Atomic32{}; a.Set(v); return a }

// Init (re)initializes the counter to v.
func (a *Atomic32) Init(v int32) { a.Set(v) }

// Set stores v.
func (a *Atomic32) Set(v int32) { atomic.StoreInt32(&a.v, v) }

// Get loads the current value.
func (a *Atomic32) Get() int32 { return atomic.LoadInt32(&a.v) }

// Add adds delta and returns the new value.
func (a *Atomic32) Add(delta int32) int32 { return atomic.AddInt32(&a.v, delta) }

// CompareAndSwap performs a CAS.
func (a *Atomic32) CompareAndSwap(old, new int32) bool {
	return atomic.CompareAndSwapInt32(&a.v, old, new)
}
