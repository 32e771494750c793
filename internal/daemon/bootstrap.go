package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/simple-bulletin/simple-bulletin/internal/auth"
	"github.com/simple-bulletin/simple-bulletin/internal/config"
	"github.com/simple-bulletin/simple-bulletin/internal/db/migrate"
	"github.com/simple-bulletin/simple-bulletin/internal/db/storage"
)

// ErrNilConfig is returned when no configuration was given.
var ErrNilConfig = errors.New("config is nil")

// openDatabase opens the configured database and applies pending migrations.
func openDatabase(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	db, err := storage.Open(&cfg.DB)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if err = migrate.Run(ctx, db); err != nil {
		_ = storage.Close(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// withService runs fn with an auth service over a migrated database and closes it afterwards.
func withService(ctx context.Context, cfg *config.Config, fn func(*auth.Service) error) error {
	if cfg == nil {
		return ErrNilConfig
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := storage.Close(db); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close database")
		}
	}()

	return fn(auth.NewService(db, auth.NewHasher(cfg.Auth)))
}

// Migrate applies pending migrations and returns the ids of all applied steps.
func Migrate(ctx context.Context, cfg *config.Config) ([]string, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	defer func() { _ = storage.Close(db) }()

	return migrate.Applied(ctx, db) //nolint:wrapcheck
}

// CreateAdmin creates an active administrator.
func CreateAdmin(ctx context.Context, cfg *config.Config, username, password string) (*auth.Identity, error) {
	var id *auth.Identity

	err := withService(ctx, cfg, func(s *auth.Service) error {
		var err error
		id, err = s.CreateAdmin(ctx, username, password)

		return err //nolint:wrapcheck
	})

	return id, err
}

// CreateUser creates a member of the users group.
func CreateUser(ctx context.Context, cfg *config.Config, username, password string, active bool) (*auth.Identity, error) {
	var id *auth.Identity

	err := withService(ctx, cfg, func(s *auth.Service) error {
		var err error
		id, err = s.CreateMember(ctx, username, password, active)

		return err //nolint:wrapcheck
	})

	return id, err
}
