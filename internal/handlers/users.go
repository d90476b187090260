package handlers

import (
	"errors"
	"net/http"

	"github.com/lipeamarok/ai-ops-inbox/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	db    *gorm.DB
	users services.UserService
}

func NewUserHandler(db *gorm.DB, users services.UserService) *UserHandler {
	return &UserHandler{db: db, users: users}
}

// ResolveUser maps a free-text identifier to its user record, creating
// one on first sight.
func (h *UserHandler) ResolveUser(c *gin.Context) {
	var body struct {
		Identifier string `json:"identifier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}

	user, err := h.users.Resolve(h.db, body.Identifier)
	if err != nil {
		if errors.Is(err, services.ErrEmptyIdentifier) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "identifier cannot be empty"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
