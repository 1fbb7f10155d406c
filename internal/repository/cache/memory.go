package cache

import (
	"container/list"
	"errors"
	"image"
	"sync"

	"github.com/jaennil/guide_helper/backend/tileengine/pkg/metrics"
)

var ErrInvalidCapacity = errors.New("memory cache capacity must be at least 1")

type memoryEntry struct {
	key  string
	img  image.Image
	size int64
}

// MemoryCache is a bounded LRU of decoded tile images. It is shared by the
// resolve path and the fetch worker.
type MemoryCache struct {
	mu       sync.Mutex
	capacity int
	bytes    int64
	items    map[string]*list.Element
	lru      *list.List
}

func NewMemoryCache(capacity int) (*MemoryCache, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	return &MemoryCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		lru:      list.New(),
	}, nil
}

// Get returns the image for key and marks it most recently used.
func (c *MemoryCache) Get(key string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		metrics.MemoryMisses.Inc()
		return nil, false
	}

	c.lru.MoveToFront(elem)
	metrics.MemoryHits.Inc()
	return elem.Value.(*memoryEntry).img, true
}

// Put stores img under key, evicting the least recently used entry when the
// cache is full.
func (c *MemoryCache) Put(key string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := sizeEstimate(img)

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*memoryEntry)
		c.bytes += size - ent.size
		ent.img = img
		ent.size = size
		c.lru.MoveToFront(elem)
		return
	}

	if c.lru.Len() >= c.capacity {
		c.evict()
	}

	elem := c.lru.PushFront(&memoryEntry{key: key, img: img, size: size})
	c.items[key] = elem
	c.bytes += size
	metrics.MemoryEntries.Set(float64(c.lru.Len()))
}

// evict must be called with mu held.
func (c *MemoryCache) evict() {
	oldest := c.lru.Back()
	if oldest == nil {
		return
	}
	ent := c.lru.Remove(oldest).(*memoryEntry)
	delete(c.items, ent.key)
	c.bytes -= ent.size
	metrics.MemoryEvictions.Inc()
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Bytes is the summed size estimate of all cached images.
func (c *MemoryCache) Bytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes
}

// Keys lists cached keys, most recently used first.
func (c *MemoryCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, c.lru.Len())
	for e := c.lru.Front(); e != nil; e = e.Next() {
		keys = append(keys, e.Value.(*memoryEntry).key)
	}
	return keys
}

func sizeEstimate(img image.Image) int64 {
	if img == nil {
		return 0
	}
	b := img.Bounds()
	return int64(b.Dx()) * int64(b.Dy()) * 4
}
