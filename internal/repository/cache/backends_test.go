package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaennil/guide_helper/backend/tileengine/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseTileCache(t *testing.T, c TileCache) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "osm-mapnik-0-0-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "osm-mapnik-0-0-1", TileCacheValue("first")))
	require.NoError(t, c.Set(ctx, "osm-mapnik-0-0-1", TileCacheValue("second")))

	v, ok, err := c.Get(ctx, "osm-mapnik-0-0-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, TileCacheValue("second"), v)

	_, ok, err = c.Get(ctx, "bing-road-q0")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFilesystemCache(t *testing.T) {
	dir := t.TempDir()
	c, err := NewFilesystemCache(filepath.Join(dir, "tiles"))
	require.NoError(t, err)
	exerciseTileCache(t, c)

	entries, err := os.ReadDir(filepath.Join(dir, "tiles"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "osm-mapnik-0-0-1.png", entries[0].Name())
}

func TestMapCache(t *testing.T) {
	exerciseTileCache(t, NewMapCache())
}

func TestSQLiteCache(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "tiles.db"), logger.NewNopLogger())
	require.NoError(t, err)
	defer c.Close()
	exerciseTileCache(t, c)
}

func TestSQLiteCache_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiles.db")
	ctx := context.Background()

	c, err := NewSQLiteCache(path, logger.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "k", TileCacheValue("v")))
	require.NoError(t, c.Close())

	c, err = NewSQLiteCache(path, logger.NewNopLogger())
	require.NoError(t, err)
	defer c.Close()

	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, TileCacheValue("v"), v)
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	c, err := NewRedisCache(context.Background(), RedisConfig{Addr: addr, DB: 15})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.client.FlushDB(context.Background()).Err())
	exerciseTileCache(t, c)
	assert.True(t, NewDiskCache(c, logger.NewNopLogger()).Remote())
}
