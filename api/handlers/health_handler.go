package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/musifyyy/tunefetch/internal/app"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	resolver *app.Resolver
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(resolver *app.Resolver) *HealthHandler {
	return &HealthHandler{resolver: resolver}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string   `json:"status"`
	Version   string   `json:"version"`
	Platforms []string `json:"platforms"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}
	for _, p := range h.resolver.Order() {
		response.Platforms = append(response.Platforms, string(p))
	}

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if len(h.resolver.Order()) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "no platforms configured",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
