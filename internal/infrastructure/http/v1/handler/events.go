package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/notify"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/logger"
)

const eventBuffer = 64

type tileEvent struct {
	Key string    `json:"key"`
	At  time.Time `json:"at"`
}

// Events streams tile-available notifications as server-sent events. Events
// are dropped for clients that fall more than eventBuffer behind.
func (h *Handler) Events(c *gin.Context) {
	l := requestLogger(c)

	clearWriteDeadline(c.Writer, l)

	events := make(chan notify.Event, eventBuffer)
	id := h.engine.Subscribe(notify.ListenerFunc(func(e notify.Event) {
		select {
		case events <- e:
		default:
		}
	}))
	defer h.engine.Unsubscribe(id)

	l.Debug("event stream opened", "subscription", id)

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"subscription": id})
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case e := <-events:
			c.SSEvent("tile", tileEvent{Key: e.Key, At: e.At})
			return true
		case <-ctx.Done():
			return false
		}
	})

	l.Debug("event stream closed", "subscription", id)
}

// clearWriteDeadline lets a stream outlive the server write timeout. Writers
// without deadline support keep it, and the stream ends when it expires.
func clearWriteDeadline(w http.ResponseWriter, l logger.Logger) bool {
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		l.Debug("cannot clear write deadline, event stream ends at the server write timeout", "error", err)
		return false
	}
	return true
}
