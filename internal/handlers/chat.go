package handlers

import (
	"net/http"

	"github.com/lipeamarok/ai-ops-inbox/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ChatHandler struct {
	db    *gorm.DB
	users services.UserService
	chat  services.ChatService
}

func NewChatHandler(db *gorm.DB, users services.UserService, chat services.ChatService) *ChatHandler {
	return &ChatHandler{db: db, users: users, chat: chat}
}

// Chat handles a conversational message. Apart from a malformed body,
// every failure degrades to a 200 with a human-readable reply so the UI
// never has to special-case transport errors.
func (h *ChatHandler) Chat(c *gin.Context) {
	var body struct {
		Identifier string `json:"identifier" binding:"required"`
		Message    string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}

	user, err := h.users.Resolve(h.db, body.Identifier)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"reply": "Sorry, something went wrong. Please try again."})
		return
	}

	result := h.chat.Handle(c.Request.Context(), h.db, user, body.Message)

	resp := gin.H{"reply": result.Reply}
	if result.TaskCreated {
		resp["taskCreated"] = true
	}
	c.JSON(http.StatusOK, resp)
}
