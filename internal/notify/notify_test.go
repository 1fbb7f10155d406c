package notify

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jaennil/guide_helper/backend/tileengine/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ch <-chan Event, n int) []Event {
	t.Helper()
	var got []Event
	timeout := time.After(2 * time.Second)
	for len(got) < n {
		select {
		case e := <-ch:
			got = append(got, e)
		case <-timeout:
			t.Fatalf("received %d of %d events", len(got), n)
		}
	}
	return got
}

func TestHub_DeliversInOrderToEverySubscriber(t *testing.T) {
	h := NewHub(logger.NewNopLogger())
	defer h.Close()

	a := make(chan Event, 10)
	b := make(chan Event, 10)
	h.Subscribe(ListenerFunc(func(e Event) { a <- e }))
	h.Subscribe(ListenerFunc(func(e Event) { b <- e }))
	require.Equal(t, 2, h.Len())

	for _, k := range []string{"k1", "k2", "k3"} {
		h.Notify(Event{Key: k})
	}

	for _, ch := range []chan Event{a, b} {
		got := collect(t, ch, 3)
		assert.Equal(t, "k1", got[0].Key)
		assert.Equal(t, "k2", got[1].Key)
		assert.Equal(t, "k3", got[2].Key)
		assert.False(t, got[0].At.IsZero())
	}
}

func TestHub_SlowListenerDoesNotBlockNotify(t *testing.T) {
	h := NewHub(logger.NewNopLogger())

	release := make(chan struct{})
	var count atomic.Int32
	h.Subscribe(ListenerFunc(func(Event) {
		<-release
		count.Add(1)
	}))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Notify(Event{Key: "k"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a slow listener")
	}

	close(release)
	assert.Eventually(t, func() bool { return count.Load() == 100 }, 2*time.Second, 5*time.Millisecond)
	h.Close()
}

func TestHub_PanickingListenerIsIsolated(t *testing.T) {
	h := NewHub(logger.NewNopLogger())
	defer h.Close()

	ok := make(chan Event, 4)
	h.Subscribe(ListenerFunc(func(Event) { panic("boom") }))
	h.Subscribe(ListenerFunc(func(e Event) { ok <- e }))

	h.Notify(Event{Key: "a"})
	h.Notify(Event{Key: "b"})

	got := collect(t, ok, 2)
	assert.Equal(t, "b", got[1].Key)
}

func TestHub_Unsubscribe(t *testing.T) {
	h := NewHub(logger.NewNopLogger())
	defer h.Close()

	var mu sync.Mutex
	var keys []string
	id := h.Subscribe(ListenerFunc(func(e Event) {
		mu.Lock()
		keys = append(keys, e.Key)
		mu.Unlock()
	}))

	assert.True(t, h.Unsubscribe(id))
	assert.False(t, h.Unsubscribe(id))
	assert.Equal(t, 0, h.Len())

	h.Notify(Event{Key: "late"})
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, keys)
}

func TestHub_SubscribeAfterClose(t *testing.T) {
	h := NewHub(logger.NewNopLogger())
	h.Close()

	assert.Empty(t, h.Subscribe(ListenerFunc(func(Event) {})))
	h.Notify(Event{Key: "ignored"})
}
