// Package container provides the two small generic data structures the
// request-protocol layer builds on: an insertion-ordered doubly-linked
// list of pointers, and an integer-keyed map with typed lookup backed
// by a Go map plus an insertion-order key slice. Both are adapted from the scene graph's own
// Node sibling list and the internal/bitm allocation bitmap — the two
// hand-rolled container shapes the teacher repo already relies on.
package container

// List is an insertion-ordered doubly-linked list of values of type T.
// It mirrors the sibling-list shape of the teacher's scene graph Node
// type (next/prev pointers, O(1) insert/remove), generalized to carry
// arbitrary payloads instead of child nodes.
type List[T any] struct {
	head, tail *listNode[T]
	len        int
}

type listNode[T any] struct {
	v          T
	next, prev *listNode[T]
}

// Handle identifies an element inserted into a List, used to remove it
// in O(1) without a linear search.
type Handle[T any] struct{ n *listNode[T] }

// PushBack appends v and returns a handle to it.
func (l *List[T]) PushBack(v T) Handle[T] {
	n := &listNode[T]{v: v}
	if l.tail == nil {
		l.head, l.tail = n, n
	} else {
		n.prev = l.tail
		l.tail.next = n
		l.tail = n
	}
	l.len++
	return Handle[T]{n}
}

// PushFront prepends v and returns a handle to it.
func (l *List[T]) PushFront(v T) Handle[T] {
	n := &listNode[T]{v: v}
	if l.head == nil {
		l.head, l.tail = n, n
	} else {
		n.next = l.head
		l.head.prev = n
		l.head = n
	}
	l.len++
	return Handle[T]{n}
}

// Remove deletes the element identified by h. It is a no-op if the
// element was already removed.
func (l *List[T]) Remove(h Handle[T]) {
	n := h.n
	if n == nil || (n.prev == nil && n.next == nil && l.head != n) {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else if l.head == n {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else if l.tail == n {
		l.tail = n.prev
	}
	n.next, n.prev = nil, nil
	l.len--
}

// Len returns the number of elements in the list.
func (l *List[T]) Len() int { return l.len }

// ForEach calls f for each element in insertion order. If f returns
// false, iteration stops early. The list must not be mutated while
// ForEach is running.
func (l *List[T]) ForEach(f func(T) bool) {
	for n := l.head; n != nil; n = n.next {
		if !f(n.v) {
			return
		}
	}
}

// Slice returns a newly allocated slice containing every element, in
// insertion order.
func (l *List[T]) Slice() []T {
	s := make([]T, 0, l.len)
	l.ForEach(func(v T) bool { s = append(s, v); return true })
	return s
}
