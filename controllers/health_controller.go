package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"b2gateway/models"
)

// HealthController handles health check endpoints
type HealthController struct {
	version string
}

// NewHealthController creates a new health controller
func NewHealthController(version string) *HealthController {
	return &HealthController{
		version: version,
	}
}

// HealthCheck returns the health status of the API
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	respond(ctx, models.Success(http.StatusOK, "", gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   c.version,
	}))
}
