package services_test

import (
	"fmt"
	"testing"

	"github.com/lipeamarok/ai-ops-inbox/internal/models"
	"github.com/lipeamarok/ai-ops-inbox/internal/services"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createEnrichableTask(t *testing.T, db *gorm.DB) *models.Task {
	t.Helper()
	user := createTestUser(t, db, "alice")
	task, err := services.NewTaskService().Create(db, user, "plan the offsite", "web")
	require.NoError(t, err)
	return task
}

func steps(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("step %d", i+1)
	}
	return out
}

func TestApplyEnrichment(t *testing.T) {
	db := newTestDB(t)
	task := createEnrichableTask(t, db)
	svc := services.NewEnrichmentService()

	next := "book the venue"
	enriched, err := svc.Apply(db, task.ID, services.EnrichmentPayload{
		TitleEnhanced: "Plan Q3 offsite",
		Priority:      models.PriorityHigh,
		Tags:          []string{"work", "planning"},
		NextAction:    &next,
		Steps:         []string{"pick dates", "book venue", "send invites"},
	})
	require.NoError(t, err)

	require.NotNil(t, enriched.TitleEnhanced)
	assert.Equal(t, "Plan Q3 offsite", *enriched.TitleEnhanced)
	require.NotNil(t, enriched.Priority)
	assert.Equal(t, models.PriorityHigh, *enriched.Priority)
	assert.Equal(t, models.TagList{"work", "planning"}, enriched.Tags)
	require.NotNil(t, enriched.NextAction)
	assert.Equal(t, "book the venue", *enriched.NextAction)

	require.Len(t, enriched.Steps, 3)
	for i, step := range enriched.Steps {
		assert.Equal(t, i+1, step.StepOrder)
		assert.False(t, step.Done)
	}
	assert.Equal(t, "pick dates", enriched.Steps[0].StepText)
	assert.Equal(t, "send invites", enriched.Steps[2].StepText)
}

func TestApplyEnrichmentDefaultsPriorityToMedium(t *testing.T) {
	db := newTestDB(t)
	task := createEnrichableTask(t, db)

	enriched, err := services.NewEnrichmentService().Apply(db, task.ID, services.EnrichmentPayload{
		TitleEnhanced: "Plan offsite",
		Steps:         []string{"a"},
	})
	require.NoError(t, err)
	require.NotNil(t, enriched.Priority)
	assert.Equal(t, models.PriorityMedium, *enriched.Priority)
	assert.Empty(t, enriched.Tags)
}

func TestApplyEnrichmentReplacesSteps(t *testing.T) {
	db := newTestDB(t)
	task := createEnrichableTask(t, db)
	svc := services.NewEnrichmentService()

	first, err := svc.Apply(db, task.ID, services.EnrichmentPayload{
		TitleEnhanced: "v1",
		Steps:         []string{"old 1", "old 2"},
	})
	require.NoError(t, err)

	// Mark a step done so we can verify completion state is discarded.
	_, err = services.NewTaskService().ToggleStep(db, task.UserID, task.ID, first.Steps[0].ID)
	require.NoError(t, err)

	second, err := svc.Apply(db, task.ID, services.EnrichmentPayload{
		TitleEnhanced: "v2",
		Steps:         []string{"new 1", "new 2", "new 3"},
	})
	require.NoError(t, err)

	require.Len(t, second.Steps, 3)
	for i, step := range second.Steps {
		assert.Equal(t, i+1, step.StepOrder)
		assert.False(t, step.Done)
	}

	var total int64
	require.NoError(t, db.Model(&models.TaskStep{}).Where("task_id = ?", task.ID).Count(&total).Error)
	assert.Equal(t, int64(3), total)
}

func TestApplyEnrichmentValidation(t *testing.T) {
	db := newTestDB(t)
	task := createEnrichableTask(t, db)
	svc := services.NewEnrichmentService()

	tests := []struct {
		name    string
		payload services.EnrichmentPayload
		field   string
	}{
		{"missing title", services.EnrichmentPayload{Steps: steps(2)}, "title_enhanced"},
		{"blank title", services.EnrichmentPayload{TitleEnhanced: "  ", Steps: steps(2)}, "title_enhanced"},
		{"bad priority", services.EnrichmentPayload{TitleEnhanced: "t", Priority: "urgent", Steps: steps(2)}, "priority"},
		{"zero steps", services.EnrichmentPayload{TitleEnhanced: "t"}, "steps"},
		{"thirteen steps", services.EnrichmentPayload{TitleEnhanced: "t", Steps: steps(13)}, "steps"},
		{"all blank steps", services.EnrichmentPayload{TitleEnhanced: "t", Steps: []string{"  ", "\t"}}, "steps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Apply(db, task.ID, tt.payload)
			var validationErr *services.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, validationErr.Fields, tt.field)
		})
	}
}

func TestApplyEnrichmentStepBounds(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewEnrichmentService()
	user := createTestUser(t, db, "alice")

	for _, n := range []int{1, 12} {
		task, err := services.NewTaskService().Create(db, user, "bounded", "web")
		require.NoError(t, err)

		enriched, err := svc.Apply(db, task.ID, services.EnrichmentPayload{
			TitleEnhanced: "t",
			Steps:         steps(n),
		})
		require.NoError(t, err, "expected %d steps to be accepted", n)
		assert.Len(t, enriched.Steps, n)
	}
}

func TestApplyEnrichmentTrimsAndDropsBlankSteps(t *testing.T) {
	db := newTestDB(t)
	task := createEnrichableTask(t, db)

	enriched, err := services.NewEnrichmentService().Apply(db, task.ID, services.EnrichmentPayload{
		TitleEnhanced: "t",
		Steps:         []string{"  first  ", "", "second", "   "},
	})
	require.NoError(t, err)

	require.Len(t, enriched.Steps, 2)
	assert.Equal(t, "first", enriched.Steps[0].StepText)
	assert.Equal(t, "second", enriched.Steps[1].StepText)
}

func TestApplyEnrichmentUnknownTask(t *testing.T) {
	db := newTestDB(t)

	_, err := services.NewEnrichmentService().Apply(db, uuid.Must(uuid.NewV4()), services.EnrichmentPayload{
		TitleEnhanced: "t",
		Steps:         steps(1),
	})
	assert.ErrorIs(t, err, services.ErrNotFound)
}
