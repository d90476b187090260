package models

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	StatusOpen = "open"
	StatusDone = "done"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Task struct {
	ID     uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	// UserKey is a denormalized copy of the owner's identifier, kept for
	// older clients that query by raw key instead of resolved id.
	UserKey       string    `json:"user_key,omitempty"`
	Source        string    `json:"source"`
	RequestRaw    string    `json:"request_raw" gorm:"not null"`
	TitleEnhanced *string   `json:"title_enhanced"`
	Priority      *string   `json:"priority"`
	Tags          TagList   `json:"tags" gorm:"type:text"`
	NextAction    *string   `json:"next_action"`
	Status        string    `json:"status" gorm:"not null;default:'open'"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Steps []TaskStep `json:"steps" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

// TaskStep rows for a task always form a contiguous 1..N step_order
// sequence; the whole set is replaced as a unit on re-enrichment.
type TaskStep struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	TaskID    uuid.UUID `json:"task_id" gorm:"type:uuid;not null;index"`
	StepOrder int       `json:"step_order" gorm:"not null"`
	StepText  string    `json:"step_text" gorm:"not null"`
	Done      bool      `json:"done" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}
