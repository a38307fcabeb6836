package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/glowmirror/configurator/internal/catalog"
	"github.com/glowmirror/configurator/internal/sku"
	"github.com/glowmirror/configurator/internal/types"
)

// SKUHandler exposes stateless encode/decode for tooling and the frontend.
type SKUHandler struct {
	cache      *catalog.Cache
	composites *sku.CompositeTable
}

// NewSKUHandler creates a SKU handler.
func NewSKUHandler(cache *catalog.Cache, composites *sku.CompositeTable) *SKUHandler {
	return &SKUHandler{cache: cache, composites: composites}
}

// DecodeResponse is the result of decoding a search string.
type DecodeResponse struct {
	ProductLine types.ProductLine `json:"productLine"`
	Decoded     sku.Decoded       `json:"decoded"`
}

// Decode handles GET /api/sku/decode?search=...
func (h *SKUHandler) Decode(c *gin.Context) {
	raw := c.Query("search")
	if raw == "" {
		raw = c.Request.URL.RawQuery
	}
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "search parameter is required"})
		return
	}

	ctx := c.Request.Context()
	lines, err := h.cache.ProductLines(ctx)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	skuStr, _ := sku.ExtractSKU(raw)
	line, ok := sku.InferProductLine(skuStr, lines)
	if !ok {
		if len(lines) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "no product lines configured"})
			return
		}
		line = lines[0]
	}
	sets, err := h.cache.OptionSets(ctx, line.ID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, DecodeResponse{
		ProductLine: line,
		Decoded:     sku.Decode(raw, sets, line, h.composites),
	})
}

// EncodeRequest carries a configuration to encode.
type EncodeRequest struct {
	ProductLineID int                 `json:"productLineId" binding:"required"`
	Configuration types.Configuration `json:"configuration"`
	Overrides     map[string]string   `json:"overrides"`
}

// Encode handles POST /api/sku/encode.
func (h *SKUHandler) Encode(c *gin.Context) {
	var req EncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productLineId and configuration are required"})
		return
	}

	ctx := c.Request.Context()
	lines, err := h.cache.ProductLines(ctx)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	var line types.ProductLine
	found := false
	for _, l := range lines {
		if l.ID == req.ProductLineID {
			line = l
			found = true
			break
		}
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown product line"})
		return
	}
	sets, err := h.cache.OptionSets(ctx, line.ID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, sku.Encode(req.Configuration, sets, line, req.Overrides, h.composites))
}
