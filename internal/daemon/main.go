// Package daemon wires storage, sessions, authentication and the web service together.
package daemon

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/simple-bulletin/simple-bulletin/internal/auth"
	"github.com/simple-bulletin/simple-bulletin/internal/config"
	"github.com/simple-bulletin/simple-bulletin/internal/db/storage"
	"github.com/simple-bulletin/simple-bulletin/internal/web"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler"
	"github.com/simple-bulletin/simple-bulletin/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg            *config.Config
	db             *gorm.DB
	sessionStorage fiber.Storage
	webService     *web.Service
}

// New opens and migrates the database, selects the session storage and builds the web service.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sessionStorage := session.NewStorage(cfg)

	deps := &handler.Deps{
		Cfg:  cfg,
		DB:   db,
		Auth: auth.NewService(db, auth.NewHasher(cfg.Auth)),
		Sessions: session.New(session.Config{
			Storage:    sessionStorage,
			Expiration: cfg.Session.ExpiryTime,
			Secure:     !cfg.DevMode,
		}),
		Validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	webService, err := web.New(deps)
	if err != nil {
		_ = storage.Close(db)
		return nil, fmt.Errorf("create web service: %w", err)
	}

	return &Daemon{
		cfg:            cfg,
		db:             db,
		sessionStorage: sessionStorage,
		webService:     webService,
	}, nil
}

// Run serves http until SIGINT or SIGTERM, then releases the storage.
func (d *Daemon) Run() error {
	go d.webService.WaitShutdown()

	addr := fmt.Sprintf(":%d", d.cfg.Webserver.Port)
	log.Info().Str("addr", addr).Str("url", d.cfg.Webserver.URL).Msg("starting web service")

	err := d.webService.Start(addr)

	d.close()

	return err //nolint:wrapcheck
}

func (d *Daemon) close() {
	if d.sessionStorage != nil {
		if err := d.sessionStorage.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close session storage")
		}
	}

	if err := storage.Close(d.db); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}
}
