package migrate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/simple-bulletin/simple-bulletin/internal/db/dbtest"
	"github.com/simple-bulletin/simple-bulletin/internal/db/migrate"
	"github.com/simple-bulletin/simple-bulletin/internal/db/models"
)

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)

	return n
}

func TestRunSeedsDefaults(t *testing.T) {
	db := dbtest.New(t)

	assert.Equal(t, int64(2), count(t, db, &models.Group{}))
	assert.Equal(t, int64(4), count(t, db, &models.Permission{}))
	assert.Equal(t, int64(4), count(t, db, &models.GroupPermission{}))

	var names []string
	require.NoError(t, db.Model(&models.Permission{}).
		Joins("JOIN groups_permissions ON groups_permissions.permission_id = permissions.id").
		Joins(`JOIN "groups" g ON g.id = groups_permissions.group_id`).
		Where("g.name = ?", models.GroupAdmins).
		Order("permissions.name").
		Pluck("permissions.name", &names).Error)
	assert.Equal(t, []string{models.PermAdminRead, models.PermAdminWrite}, names)
}

func TestRunIsIdempotent(t *testing.T) {
	db := dbtest.New(t)

	require.NoError(t, migrate.Run(context.Background(), db))
	require.NoError(t, migrate.Run(context.Background(), db))

	assert.Equal(t, int64(2), count(t, db, &models.Group{}))
	assert.Equal(t, int64(4), count(t, db, &models.Permission{}))
	assert.Equal(t, int64(4), count(t, db, &models.GroupPermission{}))

	applied, err := migrate.Applied(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, migrate.Steps(), applied)
}

func TestRunCreatesTables(t *testing.T) {
	db := dbtest.New(t)

	for _, model := range []any{
		&models.User{},
		&models.Group{},
		&models.Permission{},
		&models.Advert{},
		&models.UserGroup{},
		&models.GroupPermission{},
		&models.UserAdvert{},
		&models.SchemaMigration{},
	} {
		assert.True(t, db.Migrator().HasTable(model), "%T", model)
	}
}

func TestUserAdvertOwnerIsUnique(t *testing.T) {
	db := dbtest.New(t)

	u1 := models.User{Username: "a", PasswordHash: "x"}
	u2 := models.User{Username: "b", PasswordHash: "x"}
	ad := models.Advert{Title: "t", Content: "c"}
	require.NoError(t, db.Create(&u1).Error)
	require.NoError(t, db.Create(&u2).Error)
	require.NoError(t, db.Create(&ad).Error)

	require.NoError(t, db.Create(&models.UserAdvert{UserID: u1.ID, AdvertID: ad.ID}).Error)
	require.Error(t, db.Create(&models.UserAdvert{UserID: u2.ID, AdvertID: ad.ID}).Error)
}
