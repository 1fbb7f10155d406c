// Package fetch owns the pending request queue and the single background
// worker that fills the caches from upstream tile servers.
package fetch

import (
	"container/list"
	"context"
	"sync"

	"github.com/jaennil/guide_helper/backend/tileengine/pkg/metrics"
)

const DefaultQueueCapacity = 30

// Request asks the worker to obtain the tile at URL and cache it under Key.
type Request struct {
	URL string
	Key string
}

// Queue is a bounded stack of requests, unique by key. The newest request is
// served first and the oldest is dropped when the queue overflows, so tiles
// for the current view win over tiles the user already panned away from.
type Queue struct {
	mu       sync.Mutex
	capacity int
	items    *list.List
	index    map[string]*list.Element
	wake     chan struct{}
}

func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{
		capacity: capacity,
		items:    list.New(),
		index:    make(map[string]*list.Element),
		wake:     make(chan struct{}, 1),
	}
}

// Push places r at the head. An existing request with the same key is
// replaced. If the queue grows past capacity the tail is removed and
// returned with ok set.
func (q *Queue) Push(r Request) (dropped Request, ok bool) {
	q.mu.Lock()
	if elem, exists := q.index[r.Key]; exists {
		q.items.Remove(elem)
	}
	q.index[r.Key] = q.items.PushFront(r)

	if q.items.Len() > q.capacity {
		tail := q.items.Back()
		dropped = q.items.Remove(tail).(Request)
		delete(q.index, dropped.Key)
		ok = true
		metrics.QueueDrops.Inc()
	}
	metrics.QueueDepth.Set(float64(q.items.Len()))
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return dropped, ok
}

// Pop removes and returns the head.
func (q *Queue) Pop() (Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	head := q.items.Front()
	if head == nil {
		return Request{}, false
	}
	r := q.items.Remove(head).(Request)
	delete(q.index, r.Key)
	metrics.QueueDepth.Set(float64(q.items.Len()))
	return r, true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// Keys lists the pending keys, head first.
func (q *Queue) Keys() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	keys := make([]string, 0, q.items.Len())
	for e := q.items.Front(); e != nil; e = e.Next() {
		keys = append(keys, e.Value.(Request).Key)
	}
	return keys
}

// Wait blocks until a Push happens or ctx is done. A Push that happened
// since the last Wait returns immediately.
func (q *Queue) Wait(ctx context.Context) error {
	select {
	case <-q.wake:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
