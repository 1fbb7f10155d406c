package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Server.Port)
	assert.Equal(t, 50, cfg.Engine.MemoryCapacity)
	assert.Equal(t, 30, cfg.Engine.QueueCapacity)
	assert.Equal(t, 300, cfg.Engine.TilePixelWidth)
	assert.Equal(t, 30*time.Second, cfg.Engine.FetchTimeout)
	assert.Equal(t, 5*time.Second, cfg.Engine.DiscoveryTimeout)
	assert.Equal(t, "file", cfg.Disk.Backend)
	assert.Equal(t, "en-GB", cfg.Providers.BingCulture)
	assert.Equal(t, 1, cfg.Providers.CloudMadeStyleID)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("ENGINE_MEMORY_CAPACITY", "200")
	t.Setenv("DISK_BACKEND", "sqlite")
	t.Setenv("PROVIDERS_BING_API_KEY", "abc")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, 200, cfg.Engine.MemoryCapacity)
	assert.Equal(t, "sqlite", cfg.Disk.Backend)
	assert.Equal(t, "abc", cfg.Providers.BingAPIKey)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "tile width too small", key: "ENGINE_TILE_PIXEL_WIDTH", value: "50"},
		{name: "unknown backend", key: "DISK_BACKEND", value: "s3"},
		{name: "zero memory capacity", key: "ENGINE_MEMORY_CAPACITY", value: "0"},
		{name: "bad passthrough", key: "ENGINE_PASSTHROUGH_URL", value: "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}
