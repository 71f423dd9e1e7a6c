package handlers

import (
	"net/http"
	"time"

	"soundbox/services"
	"soundbox/websocket"

	"github.com/gin-gonic/gin"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// HealthHandler handles health check endpoints
type HealthHandler struct {
	library services.Library
	hub     websocket.Hub
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(library services.Library, hub websocket.Hub) *HealthHandler {
	return &HealthHandler{
		library: library,
		hub:     hub,
	}
}

// HealthCheck returns the health status of the service
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "soundbox",
		"version":   Version,
		"library":   h.library.AudiosPath(),
		"players":   h.hub.ClientCount(websocket.TopicPlayer),
		"timestamp": time.Now().Unix(),
	})
}
