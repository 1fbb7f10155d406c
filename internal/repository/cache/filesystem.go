package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FilesystemCache keeps one file per key directly under root.
type FilesystemCache struct {
	root string
}

func NewFilesystemCache(root string) (*FilesystemCache, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &FilesystemCache{root: root}, nil
}

var _ TileCache = (*FilesystemCache)(nil)

func (c *FilesystemCache) Get(_ context.Context, key string) (TileCacheValue, bool, error) {
	content, err := os.ReadFile(c.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read tile %s: %w", key, err)
	}

	return content, true, nil
}

// Set writes to a temp file in the same directory and renames it over the
// final path, so readers never see a partial tile.
func (c *FilesystemCache) Set(_ context.Context, key string, v TileCacheValue) error {
	tmp, err := os.CreateTemp(c.root, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(v); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write tile %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close tile %s: %w", key, err)
	}

	if err := os.Rename(tmpPath, c.path(key)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename tile %s: %w", key, err)
	}

	return nil
}

func (c *FilesystemCache) Close() error {
	return nil
}

func (c *FilesystemCache) path(key string) string {
	return filepath.Join(c.root, key+".png")
}
