package deq

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreadthFirstRotation(t *testing.T) {
	d := New("test")
	q0 := d.AddQueue(8)
	q1 := d.AddQueue(8)
	p := d.AddProc([]int{q0, q1}, Breadth)

	var mu sync.Mutex
	var order []string
	done := make(chan struct{})
	d.SetDefaultCallback(p, func(qi int, it Item) error {
		mu.Lock()
		order = append(order, it.Data.(string))
		if len(order) == 4 {
			close(done)
		}
		mu.Unlock()
		return nil
	})

	d.Enqueue(q0, Item{Data: "a0"})
	d.Enqueue(q1, Item{Data: "b0"})
	d.Enqueue(q0, Item{Data: "a1"})
	d.Enqueue(q1, Item{Data: "b1"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for items")
	}
	require.NoError(t, d.Stop())
	assert.Equal(t, []string{"a0", "b0", "a1", "b1"}, order)
}

func TestDependentNextItems(t *testing.T) {
	d := New("deps")
	q := d.AddQueue(8)
	p := d.AddProc([]int{q}, Depth)

	var mu sync.Mutex
	var seen []string
	done := make(chan struct{})
	d.SetDefaultCallback(p, func(qi int, it Item) error {
		mu.Lock()
		seen = append(seen, it.Data.(string))
		if len(seen) == 2 {
			close(done)
		}
		mu.Unlock()
		return nil
	})

	d.Enqueue(q, Item{Data: "A", Next: []Item{{Data: "B"}}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout")
	}
	require.NoError(t, d.Stop())
	assert.Equal(t, []string{"A", "B"}, seen)
}

func TestDequeueBatch(t *testing.T) {
	d := New("batch")
	q := d.AddQueue(8)
	p := d.AddProc([]int{q}, Breadth)
	var n int
	var begun, ended bool
	d.SetBatchCallbacks(p, func() { begun = true }, func() { ended = true })
	d.SetDefaultCallback(p, func(qi int, it Item) error { n++; return nil })
	for i := 0; i < 3; i++ {
		d.Enqueue(q, Item{Data: i})
	}
	got := d.DequeueBatch(p)
	assert.Equal(t, 3, got)
	assert.Equal(t, 3, n)
	assert.True(t, begun)
	assert.True(t, ended)
}
