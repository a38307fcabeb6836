package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/glowmirror/configurator/internal/session"
)

// SessionHandler exposes the configurator orchestrator over HTTP. Each
// browser tab holds one session; every mutation returns the full corrected
// snapshot including the canonical shareable URL.
type SessionHandler struct {
	manager *session.Manager
	logger  zerolog.Logger
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(manager *session.Manager) *SessionHandler {
	return &SessionHandler{
		manager: manager,
		logger:  log.With().Str("component", "session_handler").Logger(),
	}
}

// CreateSessionRequest opens a new configurator session. URL carries the
// incoming page URL (or query string) so shared/bookmarked state restores.
type CreateSessionRequest struct {
	URL string `json:"url"`
}

// SelectRequest applies one field change.
type SelectRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// SwitchLineRequest switches the session's product line.
type SwitchLineRequest struct {
	ProductLineID int `json:"productLineId" binding:"required"`
}

// Create handles POST /api/sessions.
func (h *SessionHandler) Create(c *gin.Context) {
	var req CreateSessionRequest
	// URL is optional; an empty body starts from defaults.
	_ = c.ShouldBindJSON(&req)

	s, err := h.manager.NewSession(c.Request.Context(), req.URL)
	if err != nil {
		h.logger.Error().Err(err).Msg("session creation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load catalog: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, s.Snapshot())
}

// Get handles GET /api/sessions/:id.
func (h *SessionHandler) Get(c *gin.Context) {
	s, ok := h.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// Select handles POST /api/sessions/:id/select.
func (h *SessionHandler) Select(c *gin.Context) {
	s, ok := h.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field is required"})
		return
	}

	snap, err := h.manager.HandleConfigChange(c.Request.Context(), s, req.Field, req.Value)
	if err != nil {
		h.logger.Warn().Err(err).Str("field", req.Field).Msg("config change failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "snapshot": snap})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// SwitchLine handles POST /api/sessions/:id/product-line.
func (h *SessionHandler) SwitchLine(c *gin.Context) {
	s, ok := h.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	var req SwitchLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productLineId is required"})
		return
	}

	snap, err := h.manager.HandleProductLineChange(c.Request.Context(), s, req.ProductLineID)
	if err != nil {
		h.logger.Warn().Err(err).Int("product_line", req.ProductLineID).Msg("line switch failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "snapshot": snap})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Reset handles POST /api/sessions/:id/reset (the add-to-quote reset).
func (h *SessionHandler) Reset(c *gin.Context) {
	s, ok := h.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	snap, err := h.manager.ResetForQuote(c.Request.Context(), s)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Delete handles DELETE /api/sessions/:id.
func (h *SessionHandler) Delete(c *gin.Context) {
	h.manager.Drop(c.Param("id"))
	c.Status(http.StatusNoContent)
}
