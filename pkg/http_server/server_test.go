package http_server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/jaennil/guide_helper/backend/tileengine/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestNewServer(t *testing.T) {
	ctx := context.WithValue(context.Background(), struct{}{}, "base")
	srv := NewServer(ctx, config.Server{Port: "9999", ReadTimeout: time.Second}, nil)

	assert.Equal(t, ":9999", srv.Addr)
	assert.Equal(t, time.Second, srv.ReadTimeout)
	assert.Equal(t, ctx, srv.BaseContext(&net.TCPListener{}))
}
