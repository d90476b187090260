package services

import (
	"errors"
	"strings"
	"time"

	"github.com/lipeamarok/ai-ops-inbox/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// NormalizeIdentifier trims surrounding whitespace and lower-cases a raw
// user-supplied identifier (email or name) into its canonical key.
func NormalizeIdentifier(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

type UserService interface {
	Resolve(db *gorm.DB, rawIdentifier string) (*models.User, error)
}

type UserServiceImpl struct{}

func NewUserService() *UserServiceImpl {
	return &UserServiceImpl{}
}

// Resolve maps a raw identifier to its stable user record, creating one
// on first sight. Two requests can race to create the same identifier;
// the unique index on users.identifier is authoritative, and a failed
// insert is recovered by a single retry read. The display name keeps the
// casing from the first resolution and is never updated afterwards.
func (s *UserServiceImpl) Resolve(db *gorm.DB, rawIdentifier string) (*models.User, error) {
	identifier := NormalizeIdentifier(rawIdentifier)
	if identifier == "" {
		return nil, ErrEmptyIdentifier
	}

	var existing models.User
	err := db.Where("identifier = ?", identifier).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &ResolutionError{Err: err}
	}

	user := models.User{
		ID:          uuid.Must(uuid.NewV4()),
		Identifier:  identifier,
		DisplayName: strings.TrimSpace(rawIdentifier),
		CreatedAt:   time.Now(),
	}
	if insertErr := db.Create(&user).Error; insertErr != nil {
		var raced models.User
		if retryErr := db.Where("identifier = ?", identifier).First(&raced).Error; retryErr == nil {
			return &raced, nil
		}
		return nil, &ResolutionError{Err: insertErr}
	}

	return &user, nil
}
