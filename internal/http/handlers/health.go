package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthPingTimeout = 2 * time.Second

// DependencyCheck pings one backing store. Only a failing required check
// takes the service out of rotation; optional stores degrade scoring quality.
type DependencyCheck struct {
	Name     string
	Required bool
	Ping     func(ctx context.Context) error
}

type HealthHandler struct {
	checks []DependencyCheck
}

func NewHealthHandler(checks ...DependencyCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status := "ok"
	deps := make(map[string]string, len(h.checks))
	for _, chk := range h.checks {
		if chk.Ping == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		err := chk.Ping(ctx)
		cancel()
		if err == nil {
			deps[chk.Name] = "ok"
			continue
		}
		deps[chk.Name] = "unreachable"
		if chk.Required {
			status = "down"
		} else if status == "ok" {
			status = "degraded"
		}
	}

	code := http.StatusOK
	if status == "down" {
		code = http.StatusServiceUnavailable
	}
	body := gin.H{"status": status}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	c.JSON(code, body)
}
