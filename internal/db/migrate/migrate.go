// Package migrate applies the ordered schema migrations of the bulletin board.
// Every step runs once; applied steps are recorded in schema_migrations so Run can be called on every start.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/simple-bulletin/simple-bulletin/internal/db/models"
)

// step is one migration. up must only use the transaction it receives.
type step struct {
	id string
	up func(tx *gorm.DB) error
}

// grants are the default permissions of the seeded groups.
var grants = map[string][]string{
	models.GroupUsers:  {models.PermUserRead, models.PermUserWrite},
	models.GroupAdmins: {models.PermAdminRead, models.PermAdminWrite},
}

func createTable(model any) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error {
		return tx.AutoMigrate(model)
	}
}

// steps are applied in slice order. New steps are appended, never reordered.
var steps = []step{
	{id: "0001_create_users", up: createTable(&models.User{})},
	{id: "0002_create_groups", up: createTable(&models.Group{})},
	{id: "0003_create_permissions", up: createTable(&models.Permission{})},
	{id: "0004_create_adverts", up: createTable(&models.Advert{})},
	{id: "0005_create_users_groups", up: createTable(&models.UserGroup{})},
	{id: "0006_create_groups_permissions", up: createTable(&models.GroupPermission{})},
	{id: "0007_create_users_adverts", up: createTable(&models.UserAdvert{})},
	{id: "0008_seed_groups_and_permissions", up: seed},
}

// Steps returns the ids of all known migrations in order.
func Steps() []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.id)
	}

	return out
}

// Run applies every pending migration. Re-running is a no-op.
func Run(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	if err := db.AutoMigrate(&models.SchemaMigration{}); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, s := range steps {
		err := db.Transaction(func(tx *gorm.DB) error {
			var done models.SchemaMigration

			err := tx.Where("id = ?", s.id).Take(&done).Error
			if err == nil {
				return nil
			}

			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			if err = s.up(tx); err != nil {
				return err
			}

			log.Info().Str("migration", s.id).Msg("migration applied")

			return tx.Create(&models.SchemaMigration{ID: s.id, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %s: %w", s.id, err)
		}
	}

	return nil
}

// Applied returns the ids of the applied migrations in order.
func Applied(ctx context.Context, db *gorm.DB) ([]string, error) {
	var ids []string

	err := db.WithContext(ctx).Model(&models.SchemaMigration{}).Order("id").Pluck("id", &ids).Error

	return ids, err //nolint:wrapcheck
}

// seed creates the default groups, permissions and grants.
func seed(tx *gorm.DB) error {
	groups := make(map[string]uint64, len(grants))

	for _, name := range []string{models.GroupUsers, models.GroupAdmins} {
		g := models.Group{Name: name}
		if err := tx.Where(models.Group{Name: name}).FirstOrCreate(&g).Error; err != nil {
			return err
		}

		groups[name] = g.ID
	}

	perms := make(map[string]uint64)

	for _, name := range []string{
		models.PermAdminRead, models.PermAdminWrite, models.PermUserRead, models.PermUserWrite,
	} {
		p := models.Permission{Name: name}
		if err := tx.Where(models.Permission{Name: name}).FirstOrCreate(&p).Error; err != nil {
			return err
		}

		perms[name] = p.ID
	}

	for group, names := range grants {
		for _, name := range names {
			gp := models.GroupPermission{GroupID: groups[group], PermissionID: perms[name]}

			err := tx.Where(models.GroupPermission{GroupID: gp.GroupID, PermissionID: gp.PermissionID}).
				FirstOrCreate(&gp).Error
			if err != nil {
				return err
			}
		}
	}

	return nil
}
