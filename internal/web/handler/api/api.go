// Package api serves the public feed as JSON.
package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/simple-bulletin/simple-bulletin/internal/db/controller/advert"
	"github.com/simple-bulletin/simple-bulletin/internal/db/models"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler"
	"github.com/simple-bulletin/simple-bulletin/internal/web/pagination"
)

const (
	// AdvertsPath is the JSON feed of published adverts.
	AdvertsPath = handler.APIPrefix + "adverts"

	// PageParam is the query parameter of the page number.
	PageParam = "page"
)

// AdvertPage is one page of the public feed.
type AdvertPage struct {
	Adverts    []models.Advert `json:"adverts"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	Total      int64           `json:"total"`
}

// Service is the JSON api handler service.
type Service struct {
	deps *handler.Deps
}

var _ handler.Service = (*Service)(nil)

// Init registers the api routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil {
		return handler.ErrMissingDeps
	}

	if err := deps.Check(); err != nil {
		return err
	}

	s.deps = deps

	app.Get(AdvertsPath, s.Adverts)

	return nil
}

// Adverts returns a page of published adverts, the same page the feed shows.
func (s *Service) Adverts(c *fiber.Ctx) error {
	limit := s.deps.Cfg.Board.PageSize
	page := pagination.Page(c.QueryInt(PageParam, 1))

	adverts, total, err := advert.ListPublished(c.UserContext(), s.deps.DB, limit, pagination.Offset(page, limit))
	if err != nil {
		return err //nolint:wrapcheck
	}

	if adverts == nil {
		adverts = []models.Advert{}
	}

	return c.JSON(AdvertPage{
		Adverts:    adverts,
		Page:       page,
		TotalPages: pagination.TotalPages(total, limit),
		Total:      total,
	})
}
