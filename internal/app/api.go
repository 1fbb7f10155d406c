package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/fetch"
	v1 "github.com/jaennil/guide_helper/backend/tileengine/internal/infrastructure/http/v1"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/infrastructure/http/v1/handler"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/provider"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/repository/cache"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/usecase"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/config"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/http_server"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/logger"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/projection"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/telemetry"
)

func Run(cfg *config.Config) {
	l := logger.NewZapLogger(cfg.Logger)
	defer l.Sync()

	l.Info("app config", "engine", cfg.Engine, "disk", cfg.Disk, "http", cfg.HTTP)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = logger.WithLogger(ctx, l)

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Telemetry, l)
	if err != nil {
		l.Fatal("failed to initialize tracing", "error", err)
	}

	disk, err := cache.NewTileCache(ctx, cfg.Disk, cfg.Redis, l)
	if err != nil {
		l.Fatal("failed to initialize disk cache", "error", err)
	}

	fetcher := fetch.NewHTTPFetcher(cfg.Engine.FetchTimeout, cfg.Engine.UserAgent)
	rewriter := provider.NewURLRewriter(cfg.Engine.PassthroughURL)

	registry, err := provider.NewDefaultRegistry(cfg.Providers, rewriter, fetcher, l)
	if err != nil {
		l.Fatal("failed to register tile providers", "error", err)
	}

	engine, err := usecase.NewTileUseCase(ctx, usecase.Deps{
		Registry:       registry,
		Fetcher:        fetcher,
		Disk:           disk,
		MemoryCapacity: cfg.Engine.MemoryCapacity,
		QueueCapacity:  cfg.Engine.QueueCapacity,
		TilePixelWidth: cfg.Engine.TilePixelWidth,
		Logger:         l,

		DiscoveryTimeout: cfg.Engine.DiscoveryTimeout,
	})
	if err != nil {
		l.Fatal("failed to start tile engine", "error", err)
	}

	gin.SetMode(gin.ReleaseMode)
	h := handler.NewHandler(validator.New(), engine, projection.TileSize)
	router := v1.NewRouter(h, l, v1.RouterOptions{
		ServiceName:      cfg.Telemetry.ServiceName,
		TelemetryEnabled: cfg.Telemetry.Enabled,
		MetricsEnabled:   cfg.Metrics.Enabled,
	})

	httpServer := http_server.NewServer(ctx, cfg.HTTP.Server, router)

	serverErr := make(chan error, 1)
	go func() {
		l.Info("starting http server...", "address", httpServer.Addr)
		serverErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("http server failed", "error", err)
		}
		stop()
	case <-ctx.Done():
		l.Info("received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.Server.ShutdownTimeout)
	defer shutdownCancel()

	l.Info("shutting down http server...", "address", httpServer.Addr)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.Error("http server shutdown failed", "error", err)
	} else {
		l.Info("http server shutdown completed")
	}

	engine.Close()
	l.Info("tile engine stopped")

	if disk != nil {
		if err := disk.Close(); err != nil {
			l.Error("disk cache close failed", "error", err)
		}
	}

	if err := shutdownTracer(shutdownCtx); err != nil {
		l.Error("tracer shutdown failed", "error", err)
	}

	l.Info("application shutdown completed")
}
