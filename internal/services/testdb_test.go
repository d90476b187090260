package services_test

import (
	"fmt"
	"testing"

	"github.com/lipeamarok/ai-ops-inbox/internal/models"
	"github.com/lipeamarok/ai-ops-inbox/internal/services"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}, &models.TaskStep{}))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, identifier string) *models.User {
	t.Helper()

	user, err := services.NewUserService().Resolve(db, identifier)
	require.NoError(t, err)
	return user
}
