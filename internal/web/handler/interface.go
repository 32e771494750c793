package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/simple-bulletin/simple-bulletin/internal/auth"
	"github.com/simple-bulletin/simple-bulletin/internal/config"
	"github.com/simple-bulletin/simple-bulletin/internal/web/session"
)

// ErrMissingDeps is returned by Init when a dependency is nil.
var ErrMissingDeps = errors.New(ErrNilACDFatalLogMsg)

// Deps are the collaborators handed to every handler. They are built once at startup.
type Deps struct {
	Cfg      *config.Config
	DB       *gorm.DB
	Auth     *auth.Service
	Sessions *session.Manager
	Validate *validator.Validate
}

// Check returns ErrMissingDeps unless every dependency is set.
func (d *Deps) Check() error {
	if d == nil || d.Cfg == nil || d.DB == nil || d.Auth == nil || d.Sessions == nil || d.Validate == nil {
		return ErrMissingDeps
	}

	return nil
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, deps *Deps) error
}
