package services_test

import (
	"testing"

	"github.com/lipeamarok/ai-ops-inbox/internal/models"
	"github.com/lipeamarok/ai-ops-inbox/internal/services"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"Alice@Example.COM", "alice@example.com"},
		{"  bob  ", "bob"},
		{"carol", "carol"},
		{"   ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, services.NormalizeIdentifier(tt.raw))
	}
}

func TestNormalizeIdentifierIdempotent(t *testing.T) {
	for _, s := range []string{"Alice@Example.COM", "  Bob ", "carol", "ÜBER"} {
		once := services.NormalizeIdentifier(s)
		assert.Equal(t, once, services.NormalizeIdentifier(once))
	}
}

func TestResolveRejectsEmptyIdentifier(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewUserService()

	for _, raw := range []string{"", "   ", "\t\n"} {
		_, err := svc.Resolve(db, raw)
		assert.ErrorIs(t, err, services.ErrEmptyIdentifier)
	}
}

func TestResolveCreatesOnFirstSight(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewUserService()

	user, err := svc.Resolve(db, "  Alice@Example.COM ")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", user.Identifier)
	assert.Equal(t, "Alice@Example.COM", user.DisplayName)
	assert.NotEqual(t, uuid.Nil, user.ID)
}

func TestResolveReturnsExistingUnchanged(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewUserService()

	first, err := svc.Resolve(db, "Alice@Example.com")
	require.NoError(t, err)

	// Different casing resolves to the same row; display name keeps the
	// form from the first resolution.
	second, err := svc.Resolve(db, "ALICE@EXAMPLE.COM")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Alice@Example.com", second.DisplayName)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestResolveRecoversFromInsertRace(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewUserService()

	// Sneak a competing row in between the resolver's miss and its insert,
	// the way a second concurrent resolver would.
	winner := models.User{
		ID:          uuid.Must(uuid.NewV4()),
		Identifier:  "alice",
		DisplayName: "Alice",
	}
	injected := false
	err := db.Callback().Create().Before("gorm:create").Register("inject_competing_user", func(tx *gorm.DB) {
		if injected || tx.Statement.Schema == nil || tx.Statement.Schema.Table != "users" {
			return
		}
		injected = true
		require.NoError(t, db.Session(&gorm.Session{NewDB: true}).Create(&winner).Error)
	})
	require.NoError(t, err)

	user, err := svc.Resolve(db, "alice")
	require.NoError(t, err)
	require.True(t, injected, "the competing insert must have fired")

	// The loser observes the winner's row, not an error and not a second row.
	assert.Equal(t, winner.ID, user.ID)
	assert.Equal(t, "Alice", user.DisplayName)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("identifier = ?", "alice").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIdentifierUniquenessEnforcedByStore(t *testing.T) {
	db := newTestDB(t)

	createTestUser(t, db, "alice")

	// The unique index is the authoritative correctness mechanism for the
	// resolver's create/read race.
	dup := models.User{
		ID:         uuid.Must(uuid.NewV4()),
		Identifier: "alice",
	}
	assert.Error(t, db.Create(&dup).Error)
}
