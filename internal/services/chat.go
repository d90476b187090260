package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/lipeamarok/ai-ops-inbox/internal/models"

	"github.com/gofrs/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const chatListLimit = 5

const helpReply = `Here's what I can do:
• add: [task] - Create a new task
• list - Show your recent tasks
• done: [task id] - Mark a task complete
• help - Show this message

Try saying "add: Schedule dentist appointment"`

const (
	noTasksReply      = `You have no tasks yet. Try "add: something you need to get done".`
	emptyAddReply     = `What should I add? Try "add: buy groceries".`
	fallbackReply     = "Sorry, I couldn't process your request. Please try again."
	unconfiguredReply = "Chat bot is not configured yet. Please set up the n8n workflow."
)

// Notifier dispatches the fire-and-forget enrichment notification fired
// when a task is created. Implementations must never block the caller on
// delivery.
type Notifier interface {
	NotifyTaskCreated(task *models.Task, identifier string)
}

// ChatEngine forwards free-text input the command grammar does not
// recognize to the external workflow engine and returns its reply. An
// empty reply with a nil error means the engine had nothing useful to say.
type ChatEngine interface {
	Send(ctx context.Context, userID uuid.UUID, identifier, message string) (string, error)
}

type ChatResult struct {
	Reply       string
	TaskCreated bool
}

type ChatService interface {
	Handle(ctx context.Context, db *gorm.DB, user *models.User, message string) ChatResult
}

type ChatServiceImpl struct {
	tasks    TaskService
	notifier Notifier
	engine   ChatEngine
	log      *logrus.Entry
}

func NewChatService(tasks TaskService, notifier Notifier, engine ChatEngine) *ChatServiceImpl {
	return &ChatServiceImpl{
		tasks:    tasks,
		notifier: notifier,
		engine:   engine,
		log:      logrus.WithField("component", "chat"),
	}
}

// Handle interprets the small fixed command grammar (add:, list, done:,
// help) and falls back to the external engine for anything else. The chat
// surface is deliberately forgiving: it always produces a reply, never an
// error.
func (s *ChatServiceImpl) Handle(ctx context.Context, db *gorm.DB, user *models.User, message string) ChatResult {
	trimmed := strings.TrimSpace(message)
	lower := strings.ToLower(trimmed)

	switch lower {
	case "list", "tasks":
		return ChatResult{Reply: s.listReply(db, user)}
	case "help":
		return ChatResult{Reply: helpReply}
	}

	if strings.HasPrefix(lower, "add:") {
		return s.addTask(db, user, strings.TrimSpace(trimmed[len("add:"):]))
	}

	for _, verb := range []string{"done:", "concluir:", "complete:"} {
		if strings.HasPrefix(lower, verb) {
			return ChatResult{Reply: s.completeTask(db, user, strings.TrimSpace(trimmed[len(verb):]))}
		}
	}

	return ChatResult{Reply: s.forward(ctx, user, trimmed)}
}

func (s *ChatServiceImpl) listReply(db *gorm.DB, user *models.User) string {
	tasks, err := s.tasks.ListRecent(db, user.ID, chatListLimit)
	if err != nil {
		s.log.WithError(err).Error("failed to list tasks")
		return fallbackReply
	}
	if len(tasks) == 0 {
		return noTasksReply
	}

	lines := make([]string, len(tasks))
	for i, task := range tasks {
		glyph := "🔲"
		if task.Status == models.StatusDone {
			glyph = "✅"
		}
		priority := ""
		if task.Priority != nil && *task.Priority != "" {
			priority = fmt.Sprintf("[%s] ", *task.Priority)
		}
		lines[i] = fmt.Sprintf("%s %s%s (%s)", glyph, priority, taskTitle(&task), shortID(task.ID))
	}
	return strings.Join(lines, "\n\n")
}

func (s *ChatServiceImpl) addTask(db *gorm.DB, user *models.User, text string) ChatResult {
	if text == "" {
		return ChatResult{Reply: emptyAddReply}
	}

	task, err := s.tasks.Create(db, user, text, "chat")
	if err != nil {
		s.log.WithError(err).Error("failed to create task from chat")
		return ChatResult{Reply: fallbackReply}
	}

	s.notifier.NotifyTaskCreated(task, user.Identifier)

	reply := fmt.Sprintf("Got it! I added \"%s\" to your inbox and I'm working on the breakdown.", text)
	return ChatResult{Reply: reply, TaskCreated: true}
}

func (s *ChatServiceImpl) completeTask(db *gorm.DB, user *models.User, idPrefix string) string {
	if idPrefix == "" {
		return `Which task? Try "done: " followed by the task id from "list".`
	}

	task, err := s.tasks.CompleteByPrefix(db, user.ID, idPrefix)
	if err != nil {
		if err == ErrNotFound {
			return fmt.Sprintf("I couldn't find a task starting with \"%s\". Send \"list\" to see your tasks.", idPrefix)
		}
		s.log.WithError(err).Error("failed to complete task from chat")
		return fallbackReply
	}
	return fmt.Sprintf("Nice work! \"%s\" is done. 🎉", taskTitle(task))
}

func (s *ChatServiceImpl) forward(ctx context.Context, user *models.User, message string) string {
	if s.engine == nil {
		return unconfiguredReply
	}

	reply, err := s.engine.Send(ctx, user.ID, user.Identifier, message)
	if err != nil {
		s.log.WithError(err).Warn("chat engine call failed")
		return fallbackReply
	}
	if strings.TrimSpace(reply) == "" {
		return fallbackReply
	}
	return reply
}

func taskTitle(task *models.Task) string {
	if task.TitleEnhanced != nil && *task.TitleEnhanced != "" {
		return *task.TitleEnhanced
	}
	return task.RequestRaw
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
