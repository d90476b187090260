package handlers

import (
	"errors"
	"net/http"

	"github.com/lipeamarok/ai-ops-inbox/internal/models"
	"github.com/lipeamarok/ai-ops-inbox/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// identifierFrom resolves the caller's identifier with an explicit chain:
// query parameter first, then the request body. The first one present
// wins.
func identifierFrom(c *gin.Context) string {
	if identifier := c.Query("identifier"); identifier != "" {
		return identifier
	}

	var body struct {
		Identifier string `json:"identifier"`
	}
	if err := c.ShouldBindJSON(&body); err == nil {
		return body.Identifier
	}
	return ""
}

// resolveUser maps a raw identifier to its user record, writing the error
// response itself when resolution fails. Callers bail out on nil.
func resolveUser(c *gin.Context, db *gorm.DB, users services.UserService, rawIdentifier string) *models.User {
	if rawIdentifier == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifier is required (query param or body)"})
		return nil
	}

	user, err := users.Resolve(db, rawIdentifier)
	if err != nil {
		if errors.Is(err, services.ErrEmptyIdentifier) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "identifier is required (query param or body)"})
			return nil
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user", "details": err.Error()})
		return nil
	}
	return user
}

func parseUUID(c *gin.Context, param, label string) (uuid.UUID, bool) {
	id, err := uuid.FromString(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + label + " format"})
		return uuid.Nil, false
	}
	return id, true
}

func handleTaskError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process task request", "details": err.Error()})
}
