package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PingFunc comprueba la conexión con el store.
type PingFunc func(ctx context.Context) error

// SystemHandler atiende las rutas públicas de estado.
type SystemHandler struct {
	logger  *zap.Logger
	ping    PingFunc
	started time.Time
	now     func() time.Time
}

func NewSystemHandler(logger *zap.Logger, ping PingFunc) *SystemHandler {
	now := func() time.Time { return time.Now().UTC() }
	return &SystemHandler{
		logger:  logger,
		ping:    ping,
		started: now(),
		now:     now,
	}
}

// Root maneja GET /.
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "AI Recipe Generator API", "status": "running"})
}

// Health maneja GET /api/health.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"database":  h.databaseStatus(c.Request.Context()),
		"timestamp": h.now().Format(time.RFC3339),
		"uptime":    h.now().Sub(h.started).Round(time.Second).String(),
	})
}

// Test maneja GET /api/test.
func (h *SystemHandler) Test(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Backend server is running!",
		"timestamp": h.now().Format(time.RFC3339),
		"database":  h.databaseStatus(c.Request.Context()),
	})
}

func (h *SystemHandler) databaseStatus(ctx context.Context) string {
	if h.ping == nil {
		return "Not Connected"
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.ping(ctx); err != nil {
		h.logger.Warn("database ping failed", zap.Error(err))
		return "Disconnected"
	}
	return "Connected"
}
