package handler

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler answers liveness probes for the portal process.
type HealthHandler struct {
	BaseHandler
	started time.Time
	version string
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{started: time.Now(), version: version}
}

// RegisterRoutes mounts the health endpoint at the engine root, outside the
// versioned API group.
func (h *HealthHandler) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", h.Health)
}

// Health reports process status and uptime.
func (h *HealthHandler) Health(c *gin.Context) {
	h.Success(c, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).Truncate(time.Second).String(),
	})
}
