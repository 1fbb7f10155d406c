package cache

import "context"

// TileCacheValue is an encoded tile image.
type TileCacheValue []byte

// TileCache is a flat keyed store of encoded tiles backing the disk tier.
// A missing key is reported as (nil, false, nil).
type TileCache interface {
	Get(ctx context.Context, key string) (TileCacheValue, bool, error)
	Set(ctx context.Context, key string, v TileCacheValue) error
	Close() error
}

// RemoteStore is implemented by backends reached over the network. The
// resolve path skips them so callers never wait on a round trip.
type RemoteStore interface {
	Remote() bool
}
