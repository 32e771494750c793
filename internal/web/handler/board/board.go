// Package board serves the public feed of published adverts.
package board

import (
	"github.com/gofiber/fiber/v2"

	"github.com/simple-bulletin/simple-bulletin/internal/db/controller/advert"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler"
	"github.com/simple-bulletin/simple-bulletin/internal/web/navigation"
	"github.com/simple-bulletin/simple-bulletin/internal/web/pagination"
)

const (
	// Path is the feed path.
	Path = handler.RootPath

	// TemplateName is the feed template.
	TemplateName = "index"

	// PageParam is the query parameter of the page number.
	PageParam = "page"
)

// Service is the feed handler service.
type Service struct {
	deps *handler.Deps
}

var _ handler.Service = (*Service)(nil)

// Init registers the feed route.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil {
		return handler.ErrMissingDeps
	}

	if err := deps.Check(); err != nil {
		return err
	}

	s.deps = deps

	app.Get(Path, s.Get)

	return nil
}

// Get renders one page of published adverts, newest first.
func (s *Service) Get(c *fiber.Ctx) error {
	limit := s.deps.Cfg.Board.PageSize
	page := pagination.Page(c.QueryInt(PageParam, 1))

	adverts, total, err := advert.ListPublished(c.UserContext(), s.deps.DB, limit, pagination.Offset(page, limit))
	if err != nil {
		return err //nolint:wrapcheck
	}

	pager := pagination.New(page, total, limit, PageParam)

	return handler.View(c, s.deps, TemplateName,
		navigation.NewContext("Adverts", navigation.SectionBoard, "feed"),
		fiber.Map{
			"Adverts":    adverts,
			"Page":       pager.Page,
			"TotalPages": pager.TotalPages,
			"Pager":      pager,
		})
}
