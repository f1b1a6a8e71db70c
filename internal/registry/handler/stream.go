package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/star-registry/starchain/internal/events"
	"go.uber.org/zap"
)

const streamWriteTimeout = 10 * time.Second

// StreamHandler pushes newly sealed blocks to websocket clients.
type StreamHandler struct {
	hub      *events.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewStreamHandler creates a StreamHandler fed by hub.
func NewStreamHandler(hub *events.Hub, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is enforced by the CORS layer in front of the API.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Register mounts the stream route on the given router group.
func (h *StreamHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/stream", h.Stream)
}

// Stream handles GET /stream — upgrades to a websocket and writes each newly
// sealed block as JSON until the client disconnects.
func (h *StreamHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	blocks, cancel := h.hub.Subscribe()
	defer cancel()

	// Read pump: discard client frames, unblock on disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case b, open := <-blocks:
			if !open {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteJSON(b); err != nil {
				h.logger.Debug("stream subscriber gone", zap.Error(err))
				return
			}
		}
	}
}
