package fifo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueDequeueOrder(t *testing.T) {
	f := New(4)
	for i := 0; i < 4; i++ {
		f.Enqueue(i)
	}
	for i := 0; i < 4; i++ {
		v, ok := f.Dequeue(false)
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := f.Dequeue(false)
	assert.False(t, ok)
}

func TestEnqueueFirst(t *testing.T) {
	f := New(4)
	f.Enqueue(1)
	f.Enqueue(2)
	f.EnqueueFirst(0)
	v, _ := f.Dequeue(false)
	assert.Equal(t, 0, v)
	v, _ = f.Dequeue(false)
	assert.Equal(t, 1, v)
}

func TestDiscard(t *testing.T) {
	f := New(8)
	for i := 0; i < 5; i++ {
		f.Enqueue(i)
	}
	f.Discard(2)
	assert.Equal(t, 2, f.Size())
	v, _ := f.Dequeue(false)
	assert.Equal(t, 3, v)
	v, _ = f.Dequeue(false)
	assert.Equal(t, 4, v)
}

func TestDequeueWaitBlocksAndWakes(t *testing.T) {
	f := New(4)
	done := make(chan any, 1)
	go func() {
		v, ok := f.Dequeue(true)
		if ok {
			done <- v
		} else {
			done <- nil
		}
	}()
	time.Sleep(20 * time.Millisecond)
	f.Enqueue("hello")
	select {
	case v := <-done:
		assert.Equal(t, "hello", v)
	case <-time.After(time.Second):
		t.Fatal("dequeue did not wake")
	}
}

func TestDestroyWakesWaiters(t *testing.T) {
	f := New(4)
	done := make(chan bool, 1)
	go func() {
		_, ok := f.Dequeue(true)
		done <- ok
	}()
	time.Sleep(20 * time.Millisecond)
	f.Destroy()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("destroy did not wake waiter")
	}
}

func TestIsEmpty(t *testing.T) {
	f := New(2)
	assert.True(t, f.IsEmpty())
	f.Enqueue(1)
	assert.False(t, f.IsEmpty())
	f.Dequeue(false)
	assert.True(t, f.IsEmpty())
}
