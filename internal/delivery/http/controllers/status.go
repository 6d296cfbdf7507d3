package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Probe reports whether a backing service is reachable.
type Probe func(ctx context.Context) error

type StatusHandler struct {
	probes  map[string]Probe
	timeout time.Duration
}

func NewStatusHandler(probes map[string]Probe) *StatusHandler {
	return &StatusHandler{probes: probes, timeout: 2 * time.Second}
}

func (h *StatusHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "Available"})
}

// Ready runs every probe; any failure makes the whole check 503.
func (h *StatusHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	checks := make(gin.H, len(h.probes))
	status := http.StatusOK
	for name, probe := range h.probes {
		if err := probe(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	c.JSON(status, gin.H{"checks": checks})
}
