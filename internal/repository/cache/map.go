package cache

import (
	"context"
	"sync"
)

// MapCache is a process-local blob store. Contents are lost on exit.
type MapCache struct {
	m *TypedSyncMap
}

type TypedSyncMap struct {
	m sync.Map
}

func (c *TypedSyncMap) Load(k string) (TileCacheValue, bool) {
	v, exists := c.m.Load(k)
	if !exists {
		return nil, false
	}
	return v.(TileCacheValue), exists
}

func (c *TypedSyncMap) Store(k string, v TileCacheValue) {
	c.m.Store(k, v)
}

func NewMapCache() *MapCache {
	return &MapCache{
		m: &TypedSyncMap{},
	}
}

var _ TileCache = (*MapCache)(nil)

func (c *MapCache) Get(_ context.Context, key string) (TileCacheValue, bool, error) {
	v, exists := c.m.Load(key)
	return v, exists, nil
}

func (c *MapCache) Set(_ context.Context, key string, v TileCacheValue) error {
	c.m.Store(key, v)
	return nil
}

func (c *MapCache) Close() error {
	return nil
}
