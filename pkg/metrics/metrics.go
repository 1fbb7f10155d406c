package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MemoryHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_memory_hits_total",
		Help: "Total number of memory cache hits",
	})

	MemoryMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_memory_misses_total",
		Help: "Total number of memory cache misses",
	})

	MemoryEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_memory_evictions_total",
		Help: "Total number of tiles evicted from the memory cache",
	})

	MemoryEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tile_memory_entries",
		Help: "Number of tiles held in the memory cache",
	})

	DiskHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_disk_hits_total",
		Help: "Total number of disk cache hits",
	})

	DiskMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_disk_misses_total",
		Help: "Total number of disk cache misses",
	})

	DiskStores = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_disk_stores_total",
		Help: "Total number of disk cache store operations",
	})

	DiskErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tile_disk_errors_total",
		Help: "Total number of disk cache errors",
	}, []string{"operation"})

	FetchRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_fetch_requests_total",
		Help: "Total number of upstream tile fetches",
	})

	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tile_fetch_failures_total",
		Help: "Total number of failed upstream tile fetches",
	}, []string{"reason"})

	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tile_fetch_duration_seconds",
		Help:    "Duration of upstream tile fetches in seconds",
		Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tile_queue_depth",
		Help: "Number of pending fetch requests",
	})

	QueueDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_queue_drops_total",
		Help: "Total number of fetch requests dropped from a full queue",
	})

	Notifications = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tile_notifications_total",
		Help: "Total number of tile available notifications",
	})

	// Redis metrics
	RedisOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"operation"})

	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	}, []string{"operation"})
)
