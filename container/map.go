package container

// Map is an integer-keyed map with typed lookup. It wraps a Go map but
// additionally tracks insertion order and exposes Bitm-style "does the
// key exist" queries without a second lookup, matching the resource
// table idiom the teacher's internal/bitm.Bitm implements for bit
// allocation.
type Map[K ~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64, V any] struct {
	m     map[K]V
	order []K
}

// NewMap creates an empty Map.
func NewMap[K ~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64, V any]() *Map[K, V] {
	return &Map[K, V]{m: make(map[K]V)}
}

// Set inserts or updates the value for key k.
func (m *Map[K, V]) Set(k K, v V) {
	if _, ok := m.m[k]; !ok {
		m.order = append(m.order, k)
	}
	m.m[k] = v
}

// Get returns the value for k and whether it was present.
func (m *Map[K, V]) Get(k K) (V, bool) {
	v, ok := m.m[k]
	return v, ok
}

// Delete removes k from the map.
func (m *Map[K, V]) Delete(k K) {
	if _, ok := m.m[k]; !ok {
		return
	}
	delete(m.m, k)
	for i, x := range m.order {
		if x == k {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return len(m.m) }

// Keys returns the keys in insertion order.
func (m *Map[K, V]) Keys() []K { return append([]K(nil), m.order...) }

// ForEach calls f for each entry in insertion order.
func (m *Map[K, V]) ForEach(f func(K, V) bool) {
	for _, k := range m.order {
		v, ok := m.m[k]
		if !ok {
			continue
		}
		if !f(k, v) {
			return
		}
	}
}
