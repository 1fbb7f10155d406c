package cache

import (
	"context"
	"image"
	"path/filepath"
	"testing"

	"github.com/jaennil/guide_helper/backend/tileengine/pkg/config"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskCache_StoreLoad(t *testing.T) {
	ctx := context.Background()
	d := NewDiskCache(NewMapCache(), logger.NewNopLogger())

	_, ok := d.Load(ctx, "osm-mapnik-1-1-2")
	assert.False(t, ok)

	require.NoError(t, d.Store(ctx, "osm-mapnik-1-1-2", newTestImage(8)))

	img, ok := d.Load(ctx, "osm-mapnik-1-1-2")
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())
}

func TestDiskCache_CorruptBlobIsMiss(t *testing.T) {
	ctx := context.Background()
	store := NewMapCache()
	require.NoError(t, store.Set(ctx, "bad", TileCacheValue("not an image")))

	d := NewDiskCache(store, logger.NewNopLogger())
	_, ok := d.Load(ctx, "bad")
	assert.False(t, ok)
}

type networkStore struct {
	*MapCache
}

func (networkStore) Remote() bool { return true }

func TestDiskCache_Remote(t *testing.T) {
	assert.False(t, NewDiskCache(NewMapCache(), logger.NewNopLogger()).Remote())
	assert.True(t, NewDiskCache(networkStore{NewMapCache()}, logger.NewNopLogger()).Remote())

	fs, err := NewFilesystemCache(t.TempDir())
	require.NoError(t, err)
	assert.False(t, NewDiskCache(fs, logger.NewNopLogger()).Remote())
}

func TestNewTileCache(t *testing.T) {
	ctx := context.Background()
	l := logger.NewNopLogger()
	dir := t.TempDir()

	d, err := NewTileCache(ctx, config.Disk{Enabled: false}, config.Redis{}, l)
	require.NoError(t, err)
	assert.Nil(t, d)

	for _, backend := range []string{"file", "sqlite", "memory"} {
		d, err := NewTileCache(ctx, config.Disk{
			Enabled:    true,
			Backend:    backend,
			Dir:        filepath.Join(dir, "tiles"),
			SQLitePath: filepath.Join(dir, "tiles.db"),
		}, config.Redis{}, l)
		require.NoError(t, err, backend)
		require.NotNil(t, d, backend)

		require.NoError(t, d.Store(ctx, "osm-mapnik-0-0-0", newTestImage(4)))
		_, ok := d.Load(ctx, "osm-mapnik-0-0-0")
		assert.True(t, ok, backend)
		require.NoError(t, d.Close())
	}

	_, err = NewTileCache(ctx, config.Disk{Enabled: true, Backend: "s3"}, config.Redis{}, l)
	assert.Error(t, err)
}
