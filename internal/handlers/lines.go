package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/glowmirror/configurator/internal/catalog"
)

// LinesHandler lists product lines for the line picker.
type LinesHandler struct {
	cache *catalog.Cache
}

// NewLinesHandler creates a product-lines handler.
func NewLinesHandler(cache *catalog.Cache) *LinesHandler {
	return &LinesHandler{cache: cache}
}

// List handles GET /api/product-lines.
func (h *LinesHandler) List(c *gin.Context) {
	lines, err := h.cache.ProductLines(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lines})
}
