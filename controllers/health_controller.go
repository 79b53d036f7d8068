// File: /controllers/health_controller.go
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trailcraft-api/services"
)

type HealthController struct {
	storageDriver string
	sessions      *services.SessionService
	started       time.Time
}

// NewHealthController reports on the storage driver and, when sessions is non-nil, the live session count.
func NewHealthController(storageDriver string, sessions *services.SessionService) *HealthController {
	return &HealthController{storageDriver: storageDriver, sessions: sessions, started: time.Now()}
}

// Health returns service status, storage driver and uptime.
func (hc *HealthController) Health(c *gin.Context) {
	resp := gin.H{
		"status":    "ok",
		"storage":   hc.storageDriver,
		"uptime":    time.Since(hc.started).Round(time.Second).String(),
		"timestamp": time.Now().UTC(),
	}
	if hc.sessions != nil {
		resp["active_sessions"] = hc.sessions.Count()
	}
	c.JSON(http.StatusOK, resp)
}

// Ping is a liveness probe.
func (hc *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
