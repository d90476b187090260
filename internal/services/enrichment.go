package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lipeamarok/ai-ops-inbox/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const (
	MinEnrichmentSteps = 1
	MaxEnrichmentSteps = 12
)

// EnrichmentPayload is the callback body posted by the external workflow
// engine once it has broken a request down.
type EnrichmentPayload struct {
	TitleEnhanced string   `json:"title_enhanced"`
	Priority      string   `json:"priority"`
	Tags          []string `json:"tags"`
	NextAction    *string  `json:"next_action"`
	Steps         []string `json:"steps"`
}

type EnrichmentService interface {
	Apply(db *gorm.DB, taskID uuid.UUID, payload EnrichmentPayload) (*models.Task, error)
}

type EnrichmentServiceImpl struct{}

func NewEnrichmentService() *EnrichmentServiceImpl {
	return &EnrichmentServiceImpl{}
}

// Apply replaces a task's enrichment fields and its entire step list in a
// single transaction. Step completion state from a previous enrichment is
// intentionally discarded: every new step starts not-done.
func (s *EnrichmentServiceImpl) Apply(db *gorm.DB, taskID uuid.UUID, payload EnrichmentPayload) (*models.Task, error) {
	steps := normalizeSteps(payload.Steps)
	priority := payload.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	fields := map[string]string{}
	if strings.TrimSpace(payload.TitleEnhanced) == "" {
		fields["title_enhanced"] = "required"
	}
	if !models.ValidPriority(priority) {
		fields["priority"] = "must be one of low, medium, high"
	}
	if len(steps) < MinEnrichmentSteps || len(steps) > MaxEnrichmentSteps {
		fields["steps"] = fmt.Sprintf("must contain between %d and %d non-empty steps", MinEnrichmentSteps, MaxEnrichmentSteps)
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	tags := models.TagList{}
	if payload.Tags != nil {
		tags = models.TagList(payload.Tags)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.Where("id = ?", taskID).First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		err := tx.Model(&task).Updates(map[string]interface{}{
			"title_enhanced": payload.TitleEnhanced,
			"priority":       priority,
			"tags":           tags,
			"next_action":    payload.NextAction,
			"updated_at":     time.Now(),
		}).Error
		if err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskStep{}).Error; err != nil {
			return err
		}

		rows := make([]models.TaskStep, len(steps))
		for i, text := range steps {
			rows[i] = models.TaskStep{
				ID:        uuid.Must(uuid.NewV4()),
				TaskID:    taskID,
				StepOrder: i + 1,
				StepText:  text,
				Done:      false,
				CreatedAt: time.Now(),
			}
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	var updated models.Task
	err = withSteps(db).Where("id = ?", taskID).First(&updated).Error
	if err != nil {
		return nil, mapRecordNotFound(err)
	}
	return &updated, nil
}

func normalizeSteps(raw []string) []string {
	steps := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			steps = append(steps, s)
		}
	}
	return steps
}
