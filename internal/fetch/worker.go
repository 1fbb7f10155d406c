package fetch

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/jaennil/guide_helper/backend/tileengine/internal/imaging"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/notify"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/repository/cache"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/logger"
)

// DefaultDiscoveryTimeout bounds each Hook when WorkerDeps leaves it unset.
const DefaultDiscoveryTimeout = 5 * time.Second

// Hook runs once when the worker starts, alongside request serving.
// Providers use it to discover their tile URL templates and must keep
// serving their defaults until it returns.
type Hook interface {
	Discover(ctx context.Context) error
}

type Notifier interface {
	Notify(notify.Event)
}

type WorkerDeps struct {
	Queue    *Queue
	Memory   *cache.MemoryCache
	Disk     *cache.DiskCache // optional
	Fetcher  Fetcher
	Notifier Notifier
	Hooks    []Hook
	Logger   logger.Logger

	// DiscoveryTimeout bounds each hook.
	DiscoveryTimeout time.Duration
}

// Worker drains the queue one request at a time.
type Worker struct {
	queue    *Queue
	memory   *cache.MemoryCache
	disk     *cache.DiskCache
	fetcher  Fetcher
	notifier Notifier
	hooks    []Hook
	logger   logger.Logger
	done     chan struct{}

	discoveryTimeout time.Duration
}

func NewWorker(d WorkerDeps) *Worker {
	l := d.Logger
	if l == nil {
		l = logger.NewNopLogger()
	}
	timeout := d.DiscoveryTimeout
	if timeout <= 0 {
		timeout = DefaultDiscoveryTimeout
	}
	return &Worker{
		queue:    d.Queue,
		memory:   d.Memory,
		disk:     d.Disk,
		fetcher:  d.Fetcher,
		notifier: d.Notifier,
		hooks:    d.Hooks,
		logger:   l,
		done:     make(chan struct{}),

		discoveryTimeout: timeout,
	}
}

// Run serves requests until ctx is cancelled. Hooks run concurrently with
// serving and Run waits for them before returning. It must be called once.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	var discovery sync.WaitGroup
	defer discovery.Wait()
	for _, h := range w.hooks {
		discovery.Add(1)
		go func() {
			defer discovery.Done()
			w.discover(ctx, h)
		}()
	}

	w.logger.Info("fetch worker started")
	for {
		if ctx.Err() != nil {
			w.logger.Info("fetch worker stopped")
			return
		}

		req, ok := w.queue.Pop()
		if !ok {
			if err := w.queue.Wait(ctx); err != nil {
				w.logger.Info("fetch worker stopped")
				return
			}
			continue
		}

		w.process(ctx, req)
	}
}

func (w *Worker) discover(ctx context.Context, h Hook) {
	ctx, cancel := context.WithTimeout(ctx, w.discoveryTimeout)
	defer cancel()

	start := time.Now()
	if err := h.Discover(ctx); err != nil {
		w.logger.Warn("tile url discovery failed, using defaults", "error", err, "elapsed", time.Since(start))
		return
	}
	w.logger.Debug("tile url discovery finished", "elapsed", time.Since(start))
}

// Done is closed when Run returns.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) process(ctx context.Context, req Request) {
	if w.disk != nil {
		if img, ok := w.disk.Load(ctx, req.Key); ok {
			w.logger.Debug("tile found on disk", "key", req.Key)
			w.publish(req.Key, img)
			return
		}
	}

	data, err := w.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		w.logger.Warn("tile fetch failed", "key", req.Key, "url", req.URL, "error", err)
		return
	}

	img, err := imaging.Decode(data)
	if err != nil {
		w.logger.Warn("upstream returned unusable tile", "key", req.Key, "url", req.URL, "bytes", len(data), "error", err)
		return
	}

	if w.disk != nil {
		if err := w.disk.Store(ctx, req.Key, img); err != nil {
			w.logger.Warn("failed to persist tile", "key", req.Key, "error", err)
		}
	}

	w.logger.Debug("tile fetched", "key", req.Key, "bytes", len(data))
	w.publish(req.Key, img)
}

func (w *Worker) publish(key string, img image.Image) {
	w.memory.Put(key, img)
	if w.notifier != nil {
		w.notifier.Notify(notify.Event{Key: key, At: time.Now()})
	}
}
