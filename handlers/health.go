package handlers

import (
	"net/http"

	"nestmart/utils"

	"github.com/gin-gonic/gin"
)

// HealthReporter returns the latest dependency health snapshot.
type HealthReporter interface {
	Status() utils.HealthStatus
}

// HealthHandler reports service and dependency health.
type HealthHandler struct {
	Monitor HealthReporter
}

// RootHandler handles GET /.
func RootHandler(c *gin.Context) {
	c.String(http.StatusOK, "Hi Developer Server Is Running")
}

// HealthCheckHandler handles GET /health.
func (h *HealthHandler) HealthCheckHandler(c *gin.Context) {
	status := h.Monitor.Status()
	code := http.StatusOK
	if !status.Mongo || !status.Redis {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
