package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/akilliyazili/yazili-backend/internal/response"
	"github.com/gin-gonic/gin"
)

const readinessTimeout = 3 * time.Second

// Check probes one backing service.
type Check func(ctx context.Context) error

// HealthHandler answers liveness and readiness probes.
type HealthHandler struct {
	checks map[string]Check
}

// NewHealthHandler creates a HealthHandler probing the given services on readiness.
func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Banner godoc
// GET /
func (h *HealthHandler) Banner(c *gin.Context) {
	c.String(http.StatusOK, "Akıllı Yazılı API çalışıyor")
}

// Health godoc
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}

// Ready godoc
// GET /health/ready
// Pings every backing service; 503 when any of them fails.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	services := make(gin.H, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			status = http.StatusServiceUnavailable
			services[name] = err.Error()
			continue
		}
		services[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	response.Success(c, status, gin.H{"status": overall, "services": services})
}
