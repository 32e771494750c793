// Package login serves the login form and starts sessions.
package login

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/simple-bulletin/simple-bulletin/internal/auth"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler"
	"github.com/simple-bulletin/simple-bulletin/internal/web/navigation"
)

const (
	// Path is the path to the login page.
	Path = auth.LoginPath

	// TemplateName is the login form template.
	TemplateName = "login"

	msgInvalidForm        = "Please enter username and password"
	msgInvalidCredentials = "Invalid username or password"
)

// Service is the login handler service.
type Service struct {
	deps *handler.Deps
}

var _ handler.Service = (*Service)(nil)

// form is the submitted login form.
type form struct {
	Username string `form:"username" validate:"required,max=100"`
	Password string `form:"password" validate:"required,max=1024"`
	Next     string `form:"next"`
}

// Init registers the login routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil {
		return handler.ErrMissingDeps
	}

	if err := deps.Check(); err != nil {
		return err
	}

	s.deps = deps

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.Get)
		router.Post(handler.RootPath, s.Post)
	})

	return nil
}

// Get renders the login form. Logged in users are sent on to next.
func (s *Service) Get(c *fiber.Ctx) error {
	next := SafeNext(c.Query("next"))

	if auth.CurrentIdentity(c) != nil {
		return c.Redirect(next)
	}

	return s.render(c, next, "")
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	var f form

	if err := c.BodyParser(&f); err != nil {
		c.Status(fiber.StatusBadRequest)
		return s.render(c, SafeNext(c.Query("next")), msgInvalidForm)
	}

	next := SafeNext(f.Next)

	if err := s.deps.Validate.Struct(f); err != nil {
		c.Status(fiber.StatusBadRequest)
		return s.render(c, next, msgInvalidForm)
	}

	id, err := s.deps.Auth.Authenticate(c.UserContext(), f.Username, f.Password)
	if errors.Is(err, auth.ErrWrongCredentials) {
		c.Status(fiber.StatusUnauthorized)
		return s.render(c, next, msgInvalidCredentials)
	}

	if err != nil {
		return err //nolint:wrapcheck
	}

	if err = s.deps.Sessions.Login(c, id.ID); err != nil {
		log.Error().Err(err).Uint64("user_id", id.ID).Msg("failed to start session")
		return err //nolint:wrapcheck
	}

	log.Info().Uint64("user_id", id.ID).Msg("user logged in")

	return c.Redirect(next)
}

func (s *Service) render(c *fiber.Ctx, next, msg string) error {
	nav := navigation.Home("Login", navigation.SectionAccount).AddBreadcrumb("Login", Path, true)

	return handler.View(c, s.deps, TemplateName, nav, fiber.Map{
		"Next":  next,
		"Error": msg,
	})
}

// SafeNext returns next if it is a path on this site and "/" otherwise.
// Absolute urls, scheme relative urls ("//host") and backslash tricks are rejected.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return handler.RootPath
	}

	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return handler.RootPath
	}

	return next
}
