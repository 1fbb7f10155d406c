package fetch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func req(i int) Request {
	return Request{URL: fmt.Sprintf("http://tiles.test/%d.png", i), Key: fmt.Sprintf("k%d", i)}
}

func TestQueue_StackOrder(t *testing.T) {
	q := NewQueue(5)
	q.Push(req(1))
	q.Push(req(2))
	q.Push(req(3))

	assert.Equal(t, []string{"k3", "k2", "k1"}, q.Keys())

	r, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, req(3), r)
	assert.Equal(t, 2, q.Len())
}

func TestQueue_DedupMovesToHead(t *testing.T) {
	q := NewQueue(5)
	q.Push(req(1))
	q.Push(req(2))
	q.Push(req(3))
	q.Push(Request{URL: "http://tiles.test/new-1.png", Key: "k1"})

	assert.Equal(t, []string{"k1", "k3", "k2"}, q.Keys())
	assert.Equal(t, 3, q.Len())

	r, _ := q.Pop()
	assert.Equal(t, "http://tiles.test/new-1.png", r.URL)
}

func TestQueue_OverflowDropsOldest(t *testing.T) {
	q := NewQueue(DefaultQueueCapacity)
	for i := 0; i < DefaultQueueCapacity; i++ {
		_, dropped := q.Push(req(i))
		require.False(t, dropped)
	}

	d, dropped := q.Push(req(DefaultQueueCapacity))
	require.True(t, dropped)
	assert.Equal(t, "k0", d.Key)
	assert.Equal(t, DefaultQueueCapacity, q.Len())
	assert.NotContains(t, q.Keys(), "k0")
	assert.Equal(t, fmt.Sprintf("k%d", DefaultQueueCapacity), q.Keys()[0])
}

func TestQueue_PopEmpty(t *testing.T) {
	q := NewQueue(1)
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestQueue_WaitWakesOnPush(t *testing.T) {
	q := NewQueue(3)

	woke := make(chan error, 1)
	go func() { woke <- q.Wait(context.Background()) }()

	time.Sleep(10 * time.Millisecond)
	q.Push(req(1))

	select {
	case err := <-woke:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not wake up")
	}
}

func TestQueue_WaitCancelled(t *testing.T) {
	q := NewQueue(3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, q.Wait(ctx), context.Canceled)
}
