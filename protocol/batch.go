package protocol

// Batch is an insertion-ordered sequence of requests plus the list of
// heap blocks it owns (deep copies made on behalf of the caller, or
// buffers restored from UPLOAD sidecar files on Load). Owned blocks
// live until the batch is destroyed.
type Batch struct {
	ids      *IDAllocator
	requests []Request
	owned    [][]byte
}

// NewBatch creates an empty batch. If alloc is nil, a process-default
// IDAllocator is used.
func NewBatch(alloc *IDAllocator) *Batch {
	if alloc == nil {
		alloc = defaultAlloc
	}
	return &Batch{ids: alloc}
}

// Len returns the number of requests currently in the batch.
func (b *Batch) Len() int { return len(b.requests) }

// Requests returns the batch's requests in insertion order. The
// returned slice aliases the batch's internal storage and must not be
// mutated by the caller.
func (b *Batch) Requests() []Request { return b.requests }

// At returns a copy of the request at index i.
func (b *Batch) At(i int) Request { return b.requests[i] }

// append reserves a request with the current version and the supplied
// action/type, appends it, and returns a value copy (mutating the
// returned copy never affects the stored request, matching the
// constructor contract in spec.md §4.D.1).
func (b *Batch) append(action Action, typ ObjectType, id ID, flags Flags, desc string, content Content) Request {
	r := Request{
		Version: Version,
		Action:  action,
		Type:    typ,
		ID:      id,
		Flags:   flags,
		Desc:    desc,
		Content: content,
	}
	b.requests = append(b.requests, r)
	return r
}

// newID mints an id via the batch's allocator.
func (b *Batch) newID() ID { return b.ids.New() }

// own records a deep copy of src as an owned block and returns it. If
// flags has NoCopy set, src is returned unmodified and ownership is
// left with the caller.
func (b *Batch) own(src []byte, flags Flags) []byte {
	if flags&NoCopy != 0 || src == nil {
		return src
	}
	cp := make([]byte, len(src))
	copy(cp, src)
	b.owned = append(b.owned, cp)
	return cp
}

// ShallowCopy returns a Batch that shares b's underlying request
// array pointer and does not own any of b's deep-copied buffers. It
// backs requester.Requester.Commit, where spec.md §3 requires the
// committed copy to alias the original batch's request storage.
func (b *Batch) ShallowCopy() *Batch {
	return &Batch{ids: b.ids, requests: b.requests}
}

// Copy returns a shallow-structure copy of b: a batch with a freshly
// allocated request array holding the same request values, but which
// does not inherit b's owned-pointer list (per spec.md §3, a copied
// batch does not own the original's deep-copied buffers).
func (b *Batch) Copy() *Batch {
	nb := &Batch{ids: b.ids, requests: make([]Request, len(b.requests))}
	copy(nb.requests, b.requests)
	return nb
}

// Destroy releases every buffer the batch owns. After Destroy, the
// batch's request Content.Data/Buffer/PushData slices referencing
// owned blocks are invalid.
func (b *Batch) Destroy() {
	b.owned = nil
	b.requests = nil
}
