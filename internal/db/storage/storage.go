// Package storage opens the relational store shared by every component of the board.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/simple-bulletin/simple-bulletin/internal/config"
	"github.com/simple-bulletin/simple-bulletin/internal/db/dsn"
	gormlog "github.com/simple-bulletin/simple-bulletin/internal/logger/adapter/gorm"
)

// ErrStorageUnavailable is returned when the store could not be reached, the pool could not hand out a
// connection in time or a statement failed for reasons other than a missing row.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Dialector returns the gorm driver for the configured engine.
func Dialector(cfg *config.DB) gorm.Dialector {
	switch cfg.GormEngine {
	case config.EngineMySQL:
		return mysql.Open(dsn.MySQL(cfg))
	case config.EnginePostgres:
		return postgres.Open(dsn.Postgres(cfg))
	default:
		return sqlite.Open(dsn.SQLite(cfg))
	}
}

// Open connects to the configured engine and tunes the connection pool.
func Open(cfg *config.DB) (*gorm.DB, error) {
	return OpenDialector(Dialector(cfg), cfg)
}

// OpenDialector opens d with the pool settings and logger of cfg.
func OpenDialector(d gorm.Dialector, cfg *config.DB) (*gorm.DB, error) {
	db, err := gorm.Open(d, &gorm.Config{
		Logger:                 gormlog.New(cfg.SlowThreshold),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrStorageUnavailable, cfg.GormEngine, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	log.Info().
		Str("engine", cfg.GormEngine).
		Int("max_open", cfg.MaxOpenConns).
		Int("max_idle", cfg.MaxIdleConns).
		Msg("storage opened")

	return db, nil
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err //nolint:wrapcheck
	}

	return sqlDB.Close() //nolint:wrapcheck
}

// Ping checks the store within ctx.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if err = sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	return nil
}

// Unavailable logs err for op and wraps it in ErrStorageUnavailable.
// The statement text is never logged here; the gorm logger emits it at trace level only.
func Unavailable(ctx context.Context, op string, err error) error {
	log.Error().Ctx(ctx).Err(err).Str("op", op).Msg("storage error")

	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}
