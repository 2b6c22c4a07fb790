package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListInsertionOrder(t *testing.T) {
	var l List[string]
	l.PushBack("a")
	l.PushBack("b")
	hc := l.PushBack("c")
	l.PushBack("d")
	assert.Equal(t, []string{"a", "b", "c", "d"}, l.Slice())

	l.Remove(hc)
	assert.Equal(t, []string{"a", "b", "d"}, l.Slice())
	assert.Equal(t, 3, l.Len())
}

func TestListPushFront(t *testing.T) {
	var l List[int]
	l.PushBack(2)
	l.PushFront(1)
	l.PushBack(3)
	assert.Equal(t, []int{1, 2, 3}, l.Slice())
}

func TestMapInsertionOrderAndLookup(t *testing.T) {
	m := NewMap[int, string]()
	m.Set(5, "five")
	m.Set(1, "one")
	m.Set(3, "three")
	assert.Equal(t, []int{5, 1, 3}, m.Keys())

	v, ok := m.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "one", v)

	m.Delete(5)
	assert.Equal(t, []int{1, 3}, m.Keys())
	assert.Equal(t, 2, m.Len())

	_, ok = m.Get(5)
	assert.False(t, ok)
}
