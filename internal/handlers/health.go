package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectbuddy/projectbuddy/internal/logger"
)

func (h *Handler) HealthCheck(c *gin.Context) {
	status := http.StatusOK
	database := "ok"

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			logger.Log.WithError(err).Warn("database health check failed")
			status = http.StatusServiceUnavailable
			database = "unavailable"
		}
	}

	c.JSON(status, gin.H{
		"status":    http.StatusText(status),
		"message":   "ProjectBuddy is running",
		"database":  database,
		"clients":   h.hub.Clients(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
