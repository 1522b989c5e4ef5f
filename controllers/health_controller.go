package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/Govind-619/Clomora/utils"
	"github.com/gin-gonic/gin"
)

// HealthCheck is one dependency probe.
type HealthCheck func(ctx context.Context) error

// HealthController reports process and dependency health.
type HealthController struct {
	checks map[string]HealthCheck
}

func NewHealthController(checks map[string]HealthCheck) *HealthController {
	return &HealthController{checks: checks}
}

// Health runs every probe with a short timeout. Any failure turns the
// response into a 503.
func (ctl *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	results := make(map[string]string, len(ctl.checks))
	healthy := true
	for name, check := range ctl.checks {
		if err := check(ctx); err != nil {
			utils.LogError("Health check %s failed: %v", name, err)
			results[name] = err.Error()
			healthy = false
			continue
		}
		results[name] = "ok"
	}

	if !healthy {
		utils.Error(c, http.StatusServiceUnavailable, "Service degraded", results)
		return
	}
	utils.Success(c, "Service healthy", gin.H{"app": utils.AppName, "version": utils.APIVersion, "checks": results})
}
