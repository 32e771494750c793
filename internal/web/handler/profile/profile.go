// Package profile lists the adverts of the logged in user, drafts included.
package profile

import (
	"github.com/gofiber/fiber/v2"

	"github.com/simple-bulletin/simple-bulletin/internal/auth"
	"github.com/simple-bulletin/simple-bulletin/internal/db/controller/advert"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler"
	"github.com/simple-bulletin/simple-bulletin/internal/web/navigation"
	"github.com/simple-bulletin/simple-bulletin/internal/web/pagination"
)

const (
	// Path is the profile path.
	Path = "/profile"

	// TemplateName is the profile template.
	TemplateName = "profile"

	// PageParam is the query parameter of the page number.
	PageParam = "page"
)

// Service is the profile handler service.
type Service struct {
	deps *handler.Deps
}

var _ handler.Service = (*Service)(nil)

// Init registers the profile route behind user.read.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil {
		return handler.ErrMissingDeps
	}

	if err := deps.Check(); err != nil {
		return err
	}

	s.deps = deps

	app.Get(Path, auth.RequirePermission(deps.Auth, auth.PermUserRead), s.Get)

	return nil
}

// Get renders one page of the user's own adverts.
func (s *Service) Get(c *fiber.Ctx) error {
	id := auth.CurrentIdentity(c)
	limit := s.deps.Cfg.Board.ProfilePageSize
	page := pagination.Page(c.QueryInt(PageParam, 1))

	adverts, total, err := advert.ListByOwner(c.UserContext(), s.deps.DB, id.ID, limit, pagination.Offset(page, limit))
	if err != nil {
		return err //nolint:wrapcheck
	}

	pager := pagination.New(page, total, limit, PageParam)
	nav := navigation.Home("Profile", navigation.SectionProfile).AddBreadcrumb(id.Username, Path, true)

	return handler.View(c, s.deps, TemplateName, nav, fiber.Map{
		"Adverts":    adverts,
		"Page":       pager.Page,
		"TotalPages": pager.TotalPages,
		"Pager":      pager,
	})
}
