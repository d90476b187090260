package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// User is created lazily the first time an identifier is resolved and is
// never updated or deleted afterwards. Identifier holds the normalized
// (trimmed, lower-cased) key; DisplayName keeps the casing the caller
// first supplied.
type User struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Identifier  string    `json:"identifier" gorm:"uniqueIndex;not null"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}
