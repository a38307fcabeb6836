package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/glowmirror/configurator/internal/catalog"
	"github.com/glowmirror/configurator/internal/importer"
)

// AdminHandler covers the internal admin surface: cache reload and bulk
// option import.
type AdminHandler struct {
	cache  *catalog.Cache
	logger zerolog.Logger
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(cache *catalog.Cache) *AdminHandler {
	return &AdminHandler{
		cache:  cache,
		logger: log.With().Str("component", "admin_handler").Logger(),
	}
}

// Reload handles POST /internal/admin/reload.
func (h *AdminHandler) Reload(c *gin.Context) {
	if err := h.cache.Reload(c.Request.Context()); err != nil {
		h.logger.Error().Err(err).Msg("cache reload failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded", "loadedAt": h.cache.LoadedAt()})
}

// ImportOptions handles POST /internal/admin/import/options: an XLSX upload
// with one sheet of options for a single field. The parsed options are
// validated and returned for review; persisting them stays in the CMS.
func (h *AdminHandler) ImportOptions(c *gin.Context) {
	field := c.Query("field")
	if field == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field parameter is required"})
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file upload is required"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}

	options, report, err := importer.ParseOptionsXLSX(content, field)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info().Str("field", field).Int("imported", len(options)).
		Int("skipped", report.Skipped).Msg("options imported")
	c.JSON(http.StatusOK, gin.H{"options": options, "report": report})
}
