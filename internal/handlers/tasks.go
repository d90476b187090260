package handlers

import (
	"net/http"

	"github.com/lipeamarok/ai-ops-inbox/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TaskHandler struct {
	db       *gorm.DB
	users    services.UserService
	tasks    services.TaskService
	notifier services.Notifier
}

func NewTaskHandler(db *gorm.DB, users services.UserService, tasks services.TaskService, notifier services.Notifier) *TaskHandler {
	return &TaskHandler{db: db, users: users, tasks: tasks, notifier: notifier}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var body struct {
		Identifier string `json:"identifier" binding:"required"`
		RequestRaw string `json:"request_raw" binding:"required"`
		Source     string `json:"source"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}
	if body.Source == "" {
		body.Source = "web"
	}

	user := resolveUser(c, h.db, h.users, body.Identifier)
	if user == nil {
		return
	}

	task, err := h.tasks.Create(h.db, user, body.RequestRaw, body.Source)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to insert task", "details": err.Error()})
		return
	}

	// Fire-and-forget: the enrichment engine is notified in the
	// background and its outcome never affects this response.
	h.notifier.NotifyTaskCreated(task, user.Identifier)

	c.JSON(http.StatusCreated, gin.H{"task": task})
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	identifier := c.Query("identifier")
	if identifier == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifier query parameter is required"})
		return
	}

	user := resolveUser(c, h.db, h.users, identifier)
	if user == nil {
		return
	}

	tasks, err := h.tasks.ListByUser(h.db, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch tasks", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "user": user})
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	taskID, ok := parseUUID(c, "id", "task id")
	if !ok {
		return
	}

	user := resolveUser(c, h.db, h.users, identifierFrom(c))
	if user == nil {
		return
	}

	task, err := h.tasks.GetByID(h.db, user.ID, taskID)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, ok := parseUUID(c, "id", "task id")
	if !ok {
		return
	}

	var body struct {
		Identifier string `json:"identifier" binding:"required"`
		RequestRaw string `json:"request_raw" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}

	user := resolveUser(c, h.db, h.users, body.Identifier)
	if user == nil {
		return
	}

	task, err := h.tasks.UpdateRequest(h.db, user.ID, taskID, body.RequestRaw)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, ok := parseUUID(c, "id", "task id")
	if !ok {
		return
	}

	user := resolveUser(c, h.db, h.users, identifierFrom(c))
	if user == nil {
		return
	}

	if err := h.tasks.Delete(h.db, user.ID, taskID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete task", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *TaskHandler) ToggleDone(c *gin.Context) {
	taskID, ok := parseUUID(c, "id", "task id")
	if !ok {
		return
	}

	user := resolveUser(c, h.db, h.users, identifierFrom(c))
	if user == nil {
		return
	}

	task, err := h.tasks.ToggleDone(h.db, user.ID, taskID)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *TaskHandler) ToggleStep(c *gin.Context) {
	taskID, ok := parseUUID(c, "id", "task id")
	if !ok {
		return
	}
	stepID, ok := parseUUID(c, "stepId", "step id")
	if !ok {
		return
	}

	user := resolveUser(c, h.db, h.users, identifierFrom(c))
	if user == nil {
		return
	}

	step, err := h.tasks.ToggleStep(h.db, user.ID, taskID, stepID)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"step": step})
}
