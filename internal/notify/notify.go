// Package notify fans tile-available events out to subscribers without ever
// blocking the publisher.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/logger"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/metrics"
)

// Event announces that the tile stored under Key is now in the memory cache.
type Event struct {
	Key string
	At  time.Time
}

type Listener interface {
	TileAvailable(Event)
}

type ListenerFunc func(Event)

func (f ListenerFunc) TileAvailable(e Event) { f(e) }

// Hub delivers every event to every subscriber exactly once. Each subscriber
// has its own goroutine and an unbounded mailbox, so a slow listener only
// delays itself.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*subscriber
	closed bool
	wg     sync.WaitGroup
	logger logger.Logger
}

func NewHub(l logger.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]*subscriber),
		logger: l,
	}
}

// Subscribe registers l and returns the id to unsubscribe with. Subscribing
// to a closed hub returns an empty id and l never fires.
func (h *Hub) Subscribe(l Listener) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ""
	}

	s := &subscriber{
		id:       uuid.NewString(),
		listener: l,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		logger:   h.logger,
	}
	h.subs[s.id] = s

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		s.run()
	}()

	return s.id
}

// Unsubscribe stops deliveries to the subscriber. Events still in its
// mailbox are discarded.
func (h *Hub) Unsubscribe(id string) bool {
	h.mu.Lock()
	s, ok := h.subs[id]
	delete(h.subs, id)
	h.mu.Unlock()

	if ok {
		close(s.done)
	}
	return ok
}

func (h *Hub) Notify(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.subs {
		s.push(e)
	}
	metrics.Notifications.Inc()
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close unsubscribes everyone and waits for in-flight deliveries to return.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := h.subs
	h.subs = make(map[string]*subscriber)
	h.mu.Unlock()

	for _, s := range subs {
		close(s.done)
	}
	h.wg.Wait()
}

type subscriber struct {
	id       string
	listener Listener
	logger   logger.Logger

	mu      sync.Mutex
	mailbox []Event
	wake    chan struct{}
	done    chan struct{}
}

func (s *subscriber) push(e Event) {
	s.mu.Lock()
	s.mailbox = append(s.mailbox, e)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		for {
			s.mu.Lock()
			batch := s.mailbox
			s.mailbox = nil
			s.mu.Unlock()

			if len(batch) == 0 {
				break
			}
			for _, e := range batch {
				select {
				case <-s.done:
					return
				default:
				}
				s.deliver(e)
			}
		}
	}
}

func (s *subscriber) deliver(e Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tile listener panicked", "subscription", s.id, "key", e.Key, "panic", r)
		}
	}()
	s.listener.TileAvailable(e)
}
