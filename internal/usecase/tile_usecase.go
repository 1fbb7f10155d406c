package usecase

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/jaennil/guide_helper/backend/tileengine/internal/fetch"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/notify"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/provider"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/repository/cache"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/tile"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/logger"
)

const (
	DefaultMemoryCapacity = 50
	DefaultTilePixelWidth = 300
)

var ErrMissingDependency = errors.New("missing tile engine dependency")

type Deps struct {
	Registry *provider.Registry
	Fetcher  fetch.Fetcher
	// Disk is optional; nil disables the persistent tier.
	Disk           *cache.DiskCache
	MemoryCapacity int
	QueueCapacity  int
	TilePixelWidth int
	Logger         logger.Logger
	// DiscoveryTimeout bounds each provider's URL template lookup.
	DiscoveryTimeout time.Duration
}

// TileUseCase resolves tiles against the memory and disk tiers and feeds
// misses to a single background fetch worker. Create one per map view.
type TileUseCase struct {
	registry       *provider.Registry
	memory         *cache.MemoryCache
	disk           *cache.DiskCache
	queue          *fetch.Queue
	worker         *fetch.Worker
	hub            *notify.Hub
	tilePixelWidth int
	logger         logger.Logger

	cancel    context.CancelFunc
	started   bool
	closeOnce sync.Once
}

// NewTileUseCase builds the engine and starts its worker. The worker stops
// when ctx is cancelled or Close is called.
func NewTileUseCase(ctx context.Context, d Deps) (*TileUseCase, error) {
	uc, err := newTileUseCase(d)
	if err != nil {
		return nil, err
	}

	ctx, uc.cancel = context.WithCancel(ctx)
	uc.started = true
	go uc.worker.Run(ctx)

	return uc, nil
}

func newTileUseCase(d Deps) (*TileUseCase, error) {
	if d.Registry == nil || d.Fetcher == nil {
		return nil, ErrMissingDependency
	}
	if d.Logger == nil {
		d.Logger = logger.NewNopLogger()
	}
	if d.MemoryCapacity == 0 {
		d.MemoryCapacity = DefaultMemoryCapacity
	}
	if d.TilePixelWidth == 0 {
		d.TilePixelWidth = DefaultTilePixelWidth
	}

	memory, err := cache.NewMemoryCache(d.MemoryCapacity)
	if err != nil {
		return nil, err
	}

	queue := fetch.NewQueue(d.QueueCapacity)
	hub := notify.NewHub(d.Logger)
	worker := fetch.NewWorker(fetch.WorkerDeps{
		Queue:    queue,
		Memory:   memory,
		Disk:     d.Disk,
		Fetcher:  d.Fetcher,
		Notifier: hub,
		Hooks:    d.Registry.Hooks(),
		Logger:   d.Logger,

		DiscoveryTimeout: d.DiscoveryTimeout,
	})

	return &TileUseCase{
		registry:       d.Registry,
		memory:         memory,
		disk:           d.Disk,
		queue:          queue,
		worker:         worker,
		hub:            hub,
		tilePixelWidth: d.TilePixelWidth,
		logger:         d.Logger,
		cancel:         func() {},
	}, nil
}

// Close stops the worker, waits for it and drops all subscriptions.
func (uc *TileUseCase) Close() {
	uc.closeOnce.Do(func() {
		uc.cancel()
		if uc.started {
			<-uc.worker.Done()
		}
		uc.hub.Close()
	})
}

// Resolve returns the tile if it is cached. A miss enqueues a fetch unless
// onlyFromCache is set; callers learn about the result through Subscribe.
func (uc *TileUseCase) Resolve(ctx context.Context, providerID, styleID string, a tile.Address, onlyFromCache bool) (image.Image, bool) {
	p, err := uc.registry.Lookup(providerID, styleID)
	if err != nil {
		uc.logger.Warn("resolve with unknown provider", "provider", providerID, "style", styleID)
		return nil, false
	}
	return uc.resolve(ctx, p, a, onlyFromCache)
}

func (uc *TileUseCase) resolve(ctx context.Context, p provider.Provider, a tile.Address, onlyFromCache bool) (image.Image, bool) {
	key := p.CacheKey(a)

	if img, ok := uc.memory.Get(key); ok {
		return img, true
	}

	// Network-backed disk tiers are left to the worker.
	if uc.disk != nil && !uc.disk.Remote() {
		if img, ok := uc.disk.Load(ctx, key); ok {
			uc.memory.Put(key, img)
			return img, true
		}
	}

	if onlyFromCache {
		return nil, false
	}

	url, err := p.URL(a)
	if err != nil {
		uc.logger.Debug("no url for tile", "key", key, "error", err)
		return nil, false
	}

	if dropped, ok := uc.queue.Push(fetch.Request{URL: url, Key: key}); ok {
		uc.logger.Debug("fetch queue full, dropped oldest request", "dropped", dropped.Key, "queued", key)
	}
	return nil, false
}

type FallbackResult struct {
	Tile    image.Image
	Address tile.Address
	Found   bool
	// Probes is the number of ancestor lookups made.
	Probes int
}

// Fallback walks up from a towards zoom 0 and returns the first ancestor
// already in a cache. It never enqueues fetches.
func (uc *TileUseCase) Fallback(ctx context.Context, providerID, styleID string, a tile.Address) FallbackResult {
	p, err := uc.registry.Lookup(providerID, styleID)
	if err != nil {
		uc.logger.Warn("fallback with unknown provider", "provider", providerID, "style", styleID)
		return FallbackResult{}
	}
	return uc.fallback(ctx, p, a)
}

func (uc *TileUseCase) fallback(ctx context.Context, p provider.Provider, a tile.Address) FallbackResult {
	var res FallbackResult
	cur := a
	for {
		parent, ok := cur.Parent()
		if !ok {
			return res
		}
		res.Probes++

		if img, ok := uc.resolve(ctx, p, parent, true); ok {
			res.Tile = img
			res.Address = parent
			res.Found = true
			return res
		}
		cur = parent
	}
}

func (uc *TileUseCase) Subscribe(l notify.Listener) string {
	return uc.hub.Subscribe(l)
}

func (uc *TileUseCase) Unsubscribe(id string) bool {
	return uc.hub.Unsubscribe(id)
}

// Provider looks up one registered provider style.
func (uc *TileUseCase) Provider(providerID, styleID string) (provider.Provider, error) {
	return uc.registry.Lookup(providerID, styleID)
}

// Providers lists the registered providers.
func (uc *TileUseCase) Providers() []provider.Provider {
	return uc.registry.All()
}

type Stats struct {
	MemoryEntries int      `json:"memory_entries"`
	MemoryBytes   int64    `json:"memory_bytes"`
	QueueDepth    int      `json:"queue_depth"`
	Queued        []string `json:"queued"`
	Subscribers   int      `json:"subscribers"`
	DiskEnabled   bool     `json:"disk_enabled"`
}

func (uc *TileUseCase) Stats() Stats {
	queued := uc.queue.Keys()
	return Stats{
		MemoryEntries: uc.memory.Len(),
		MemoryBytes:   uc.memory.Bytes(),
		QueueDepth:    len(queued),
		Queued:        queued,
		Subscribers:   uc.hub.Len(),
		DiskEnabled:   uc.disk != nil,
	}
}
