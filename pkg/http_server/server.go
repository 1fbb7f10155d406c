package http_server

import (
	"context"
	"net"
	"net/http"

	"github.com/jaennil/guide_helper/backend/tileengine/pkg/config"
)

// NewServer builds the HTTP server. Request contexts derive from ctx, so
// cancelling it ends long-lived streams before Shutdown waits on them.
func NewServer(ctx context.Context, cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}
