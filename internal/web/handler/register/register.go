// Package register lets visitors sign up. New accounts stay inactive until a moderator activates them.
package register

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/simple-bulletin/simple-bulletin/internal/auth"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler"
	"github.com/simple-bulletin/simple-bulletin/internal/web/navigation"
)

const (
	// Path is the registration path.
	Path = "/register"

	// TemplateName is the registration form template.
	TemplateName = "register"

	msgInvalidForm   = "Username must be 3 to 100 letters or digits, password at least 8 characters and both passwords equal"
	msgUsernameTaken = "This username is already taken"
	msgRegistered    = "Your account was created and waits for activation by a moderator"
)

// Service is the registration handler service.
type Service struct {
	deps *handler.Deps
}

var _ handler.Service = (*Service)(nil)

type form struct {
	Username string `form:"username" validate:"required,alphanum,min=3,max=100"`
	Password string `form:"password" validate:"required,min=8,max=1024"`
	Confirm  string `form:"confirm"  validate:"eqfield=Password"`
}

// Init registers the registration routes.
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

// Get renders the registration form.
func (s *Service) Get(c *fiber.Ctx) error {
	return s.render(c, fiber.Map{})
}

// Post creates an inactive account in the users group.
func (s *Service) Post(c *fiber.Ctx) error {
	var f form

	if err := c.BodyParser(&f); err != nil {
		c.Status(fiber.StatusBadRequest)
		return s.render(c, fiber.Map{"Error": msgInvalidForm})
	}

	if err := s.deps.Validate.Struct(f); err != nil {
		c.Status(fiber.StatusBadRequest)
		return s.render(c, fiber.Map{"Error": msgInvalidForm, "Username": f.Username})
	}

	id, err := s.deps.Auth.Register(c.UserContext(), f.Username, f.Password)
	if errors.Is(err, auth.ErrUsernameTaken) {
		c.Status(fiber.StatusConflict)
		return s.render(c, fiber.Map{"Error": msgUsernameTaken, "Username": f.Username})
	}

	if err != nil {
		return err //nolint:wrapcheck
	}

	log.Info().Uint64("user_id", id.ID).Msg("user registered")

	c.Status(fiber.StatusCreated)

	return s.render(c, fiber.Map{"Success": msgRegistered})
}

func (s *Service) render(c *fiber.Ctx, data fiber.Map) error {
	nav := navigation.Home("Register", navigation.SectionAccount).AddBreadcrumb("Register", Path, true)

	return handler.View(c, s.deps, TemplateName, nav, data)
}
