package api

import (
	"net/http"
	"sync"

	"recovery-engine/internal/engine"
	"recovery-engine/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ProgressHub fans batch-run progress events out to connected dashboards.
type ProgressHub struct {
	log      *logger.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewProgressHub(log *logger.Logger) *ProgressHub {
	return &ProgressHub{
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// HandleWS upgrades the request and keeps the connection registered until
// the client goes away.
func (h *ProgressHub) HandleWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	// Reader loop exists only to detect close.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Publish sends one progress event to every connected client. Dead
// connections are dropped on write failure.
func (h *ProgressHub) Publish(event engine.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		if err := conn.WriteJSON(event); err != nil {
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

func (h *ProgressHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn.Close()
	delete(h.conns, conn)
}
