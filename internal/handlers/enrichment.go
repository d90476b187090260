package handlers

import (
	"errors"
	"net/http"

	"github.com/lipeamarok/ai-ops-inbox/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const enrichmentAllowedMethods = "POST, PUT, OPTIONS"

type EnrichmentHandler struct {
	db         *gorm.DB
	enrichment services.EnrichmentService
}

func NewEnrichmentHandler(db *gorm.DB, enrichment services.EnrichmentService) *EnrichmentHandler {
	return &EnrichmentHandler{db: db, enrichment: enrichment}
}

// Apply receives the enrichment callback from the external workflow
// engine. Registered for both POST and PUT because some workflow nodes
// fall back to PUT.
func (h *EnrichmentHandler) Apply(c *gin.Context) {
	taskID, ok := parseUUID(c, "id", "task id")
	if !ok {
		return
	}

	var payload services.EnrichmentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid enrichment body", "details": err.Error()})
		return
	}

	task, err := h.enrichment.Apply(h.db, taskID, payload)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid enrichment body", "details": validationErr.Fields})
			return
		}
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply enrichment", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "task_id": taskID, "task": task})
}

// Preflight answers CORS preflight requests from the workflow engine.
func (h *EnrichmentHandler) Preflight(c *gin.Context) {
	c.Header("Allow", enrichmentAllowedMethods)
	c.Header("Access-Control-Allow-Methods", enrichmentAllowedMethods)
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Status(http.StatusNoContent)
}
