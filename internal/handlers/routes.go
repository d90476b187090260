package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// API groups the handlers behind the HTTP surface.
type API struct {
	Users      *UserHandler
	Tasks      *TaskHandler
	Enrichment *EnrichmentHandler
	Chat       *ChatHandler
}

func (a *API) Register(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/resolve-user", a.Users.ResolveUser)

	router.POST("/tasks", a.Tasks.CreateTask)
	router.GET("/tasks", a.Tasks.GetTasks)
	router.GET("/tasks/:id", a.Tasks.GetTaskByID)
	router.PUT("/tasks/:id", a.Tasks.UpdateTask)
	router.DELETE("/tasks/:id", a.Tasks.DeleteTask)
	router.PATCH("/tasks/:id/done", a.Tasks.ToggleDone)
	router.PATCH("/tasks/:id/steps/:stepId", a.Tasks.ToggleStep)

	router.POST("/tasks/:id/enrichment", a.Enrichment.Apply)
	router.PUT("/tasks/:id/enrichment", a.Enrichment.Apply)
	router.OPTIONS("/tasks/:id/enrichment", a.Enrichment.Preflight)

	router.POST("/chat", a.Chat.Chat)
}
