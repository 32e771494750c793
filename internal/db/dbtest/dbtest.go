// Package dbtest provides a migrated in-memory database for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/simple-bulletin/simple-bulletin/internal/db/migrate"
	"github.com/simple-bulletin/simple-bulletin/internal/db/models"
)

// New returns an in-memory sqlite database with all migrations applied.
// An in-memory database lives per connection, so the pool is limited to one.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migrate.Run(context.Background(), db), "failed to migrate test database")

	return db
}

// CreateUser inserts a user with a placeholder hash and adds it to the named groups.
func CreateUser(t *testing.T, db *gorm.DB, username string, active bool, groups ...string) models.User {
	t.Helper()

	u := models.User{Username: username, PasswordHash: "not-a-hash", Active: active}
	require.NoError(t, db.Create(&u).Error)

	for _, name := range groups {
		var g models.Group
		require.NoError(t, db.Where("name = ?", name).Take(&g).Error)
		require.NoError(t, db.Create(&models.UserGroup{UserID: u.ID, GroupID: g.ID}).Error)
	}

	return u
}

// CreateAdvert inserts an advert owned by ownerID.
func CreateAdvert(t *testing.T, db *gorm.DB, ownerID uint64, title string, published bool) models.Advert {
	t.Helper()

	ad := models.Advert{Title: title, Content: title + " content", Published: published}
	require.NoError(t, db.Create(&ad).Error)
	require.NoError(t, db.Create(&models.UserAdvert{UserID: ownerID, AdvertID: ad.ID}).Error)

	return ad
}
