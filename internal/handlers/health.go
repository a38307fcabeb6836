package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/glowmirror/configurator/internal/catalog"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Catalog string `json:"catalog"`
}

// HealthHandler reports service and catalog-cache health.
type HealthHandler struct {
	cache *catalog.Cache
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(cache *catalog.Cache) *HealthHandler {
	return &HealthHandler{cache: cache}
}

// Check handles GET /health.
func (h *HealthHandler) Check(c *gin.Context) {
	response := HealthResponse{Status: "ok"}
	if h.cache == nil || h.cache.LoadedAt().IsZero() {
		response.Catalog = "cold"
	} else {
		response.Catalog = "warm"
	}
	c.JSON(http.StatusOK, response)
}
