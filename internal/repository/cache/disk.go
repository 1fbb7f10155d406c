package cache

import (
	"context"
	"fmt"
	"image"

	"github.com/jaennil/guide_helper/backend/tileengine/internal/imaging"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/logger"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/metrics"
)

// DiskCache is the persistent tier. It stores tiles as PNG in a TileCache
// backend and never evicts.
type DiskCache struct {
	store  TileCache
	logger logger.Logger
}

func NewDiskCache(store TileCache, l logger.Logger) *DiskCache {
	return &DiskCache{store: store, logger: l}
}

// Load returns the decoded tile for key. Read and decode failures are
// logged and reported as a miss.
func (d *DiskCache) Load(ctx context.Context, key string) (image.Image, bool) {
	data, ok, err := d.store.Get(ctx, key)
	if err != nil {
		metrics.DiskErrors.WithLabelValues("get").Inc()
		d.logger.Warn("disk cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		metrics.DiskMisses.Inc()
		return nil, false
	}

	img, err := imaging.Decode(data)
	if err != nil {
		metrics.DiskErrors.WithLabelValues("decode").Inc()
		d.logger.Warn("disk cache holds unreadable tile", "key", key, "error", err)
		return nil, false
	}

	metrics.DiskHits.Inc()
	return img, true
}

func (d *DiskCache) Store(ctx context.Context, key string, img image.Image) error {
	data, err := imaging.EncodePNG(img)
	if err != nil {
		metrics.DiskErrors.WithLabelValues("encode").Inc()
		return err
	}

	if err := d.store.Set(ctx, key, data); err != nil {
		metrics.DiskErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("store tile %s: %w", key, err)
	}

	metrics.DiskStores.Inc()
	return nil
}

// Remote reports whether loads go over the network.
func (d *DiskCache) Remote() bool {
	r, ok := d.store.(RemoteStore)
	return ok && r.Remote()
}

func (d *DiskCache) Close() error {
	return d.store.Close()
}
