package services

import (
	"errors"
	"strings"
	"time"

	"github.com/lipeamarok/ai-ops-inbox/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// TaskService covers all task and step access. Every operation scopes by
// the owning user id; a task id belonging to another user behaves exactly
// like a missing task.
type TaskService interface {
	Create(db *gorm.DB, user *models.User, requestRaw, source string) (*models.Task, error)
	GetByID(db *gorm.DB, userID, taskID uuid.UUID) (*models.Task, error)
	ListByUser(db *gorm.DB, userID uuid.UUID) ([]models.Task, error)
	ListRecent(db *gorm.DB, userID uuid.UUID, limit int) ([]models.Task, error)
	UpdateRequest(db *gorm.DB, userID, taskID uuid.UUID, requestRaw string) (*models.Task, error)
	ToggleDone(db *gorm.DB, userID, taskID uuid.UUID) (*models.Task, error)
	ToggleStep(db *gorm.DB, userID, taskID, stepID uuid.UUID) (*models.TaskStep, error)
	Delete(db *gorm.DB, userID, taskID uuid.UUID) error
	CompleteByPrefix(db *gorm.DB, userID uuid.UUID, idPrefix string) (*models.Task, error)
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

func withSteps(db *gorm.DB) *gorm.DB {
	return db.Preload("Steps", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("step_order ASC")
	})
}

func (s *TaskServiceImpl) Create(db *gorm.DB, user *models.User, requestRaw, source string) (*models.Task, error) {
	now := time.Now()
	task := models.Task{
		ID:         uuid.Must(uuid.NewV4()),
		UserID:     user.ID,
		UserKey:    user.Identifier,
		Source:     source,
		RequestRaw: requestRaw,
		Tags:       models.TagList{},
		Status:     models.StatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
		Steps:      []models.TaskStep{},
	}
	if err := db.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskServiceImpl) GetByID(db *gorm.DB, userID, taskID uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := withSteps(db).Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error
	if err != nil {
		return nil, mapRecordNotFound(err)
	}
	return &task, nil
}

func (s *TaskServiceImpl) ListByUser(db *gorm.DB, userID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := withSteps(db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskServiceImpl) ListRecent(db *gorm.DB, userID uuid.UUID, limit int) ([]models.Task, error) {
	var tasks []models.Task
	err := db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateRequest replaces the original request text; enrichment fields are
// left untouched.
func (s *TaskServiceImpl) UpdateRequest(db *gorm.DB, userID, taskID uuid.UUID, requestRaw string) (*models.Task, error) {
	res := db.Model(&models.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Updates(map[string]interface{}{
			"request_raw": requestRaw,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(db, userID, taskID)
}

// ToggleDone flips the task between open and done based on the stored
// status, never on anything client-supplied.
func (s *TaskServiceImpl) ToggleDone(db *gorm.DB, userID, taskID uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := db.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error
	if err != nil {
		return nil, mapRecordNotFound(err)
	}

	next := models.StatusDone
	if task.Status == models.StatusDone {
		next = models.StatusOpen
	}
	err = db.Model(&task).Updates(map[string]interface{}{
		"status":     next,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		return nil, err
	}
	return s.GetByID(db, userID, taskID)
}

// ToggleStep flips a single step's done flag. The parent task must belong
// to the requesting user and the step to that task.
func (s *TaskServiceImpl) ToggleStep(db *gorm.DB, userID, taskID, stepID uuid.UUID) (*models.TaskStep, error) {
	var task models.Task
	err := db.Select("id").Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error
	if err != nil {
		return nil, mapRecordNotFound(err)
	}

	var step models.TaskStep
	err = db.Where("id = ? AND task_id = ?", stepID, taskID).First(&step).Error
	if err != nil {
		return nil, mapRecordNotFound(err)
	}

	step.Done = !step.Done
	if err := db.Model(&step).Update("done", step.Done).Error; err != nil {
		return nil, err
	}
	return &step, nil
}

// Delete removes the task and its steps. Deleting a task that does not
// exist for the user is a no-op, not an error: the operation ensures
// absence rather than asserting presence.
func (s *TaskServiceImpl) Delete(db *gorm.DB, userID, taskID uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", taskID, userID).Delete(&models.Task{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Where("task_id = ?", taskID).Delete(&models.TaskStep{}).Error
	})
}

// CompleteByPrefix finds the user's task whose id starts with the given
// prefix and sets its status to done unconditionally. Used by the chat
// surface, where users type truncated ids.
func (s *TaskServiceImpl) CompleteByPrefix(db *gorm.DB, userID uuid.UUID, idPrefix string) (*models.Task, error) {
	prefix := strings.ToLower(strings.TrimSpace(idPrefix))
	if prefix == "" {
		return nil, ErrNotFound
	}

	var tasks []models.Task
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	for i := range tasks {
		if strings.HasPrefix(strings.ToLower(tasks[i].ID.String()), prefix) {
			err = db.Model(&tasks[i]).Updates(map[string]interface{}{
				"status":     models.StatusDone,
				"updated_at": time.Now(),
			}).Error
			if err != nil {
				return nil, err
			}
			tasks[i].Status = models.StatusDone
			return &tasks[i], nil
		}
	}
	return nil, ErrNotFound
}

func mapRecordNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
