// Package logout ends sessions.
package logout

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/simple-bulletin/simple-bulletin/internal/web/handler"
)

// Path is the logout path.
const Path = "/logout"

// Service is the logout handler service.
type Service struct {
	deps *handler.Deps
}

var _ handler.Service = (*Service)(nil)

// Init registers the logout routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil {
		return handler.ErrMissingDeps
	}

	if err := deps.Check(); err != nil {
		return err
	}

	s.deps = deps

	app.Get(Path, s.Logout)
	app.Post(Path, s.Logout)

	return nil
}

// Logout destroys the session and returns to the board.
func (s *Service) Logout(c *fiber.Ctx) error {
	if err := s.deps.Sessions.Logout(c); err != nil {
		log.Error().Err(err).Msg("failed to destroy session")
		return err //nolint:wrapcheck
	}

	return c.Redirect(handler.RootPath)
}
