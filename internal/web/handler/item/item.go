// Package item serves single adverts: creation, the detail page and publication changes.
package item

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/simple-bulletin/simple-bulletin/internal/auth"
	"github.com/simple-bulletin/simple-bulletin/internal/db/controller/advert"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler"
	"github.com/simple-bulletin/simple-bulletin/internal/web/navigation"
)

const (
	// Path is the route group of single adverts.
	Path = "/item"

	// TemplateItem renders one advert.
	TemplateItem = "item"

	// TemplateNew renders the advert form.
	TemplateNew = "item_new"

	// ActionPublish and ActionUnpublish are the values of the "action" form field.
	ActionPublish   = "publish"
	ActionUnpublish = "unpublish"

	msgInvalidForm = "Title (up to 255 characters) and content are required"
)

// Service is the advert handler service.
type Service struct {
	deps *handler.Deps
}

var _ handler.Service = (*Service)(nil)

type newForm struct {
	Title   string `form:"title"   validate:"required,max=255"`
	Content string `form:"content" validate:"required,max=10000"`
}

type editForm struct {
	Action string `form:"action" validate:"required,oneof=publish unpublish"`
}

// URL returns the detail page of an advert.
func URL(id uint64) string {
	return Path + "/" + strconv.FormatUint(id, 10)
}

// Init registers the advert routes. "/new" is registered before "/:id" so it is not taken for an id.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil {
		return handler.ErrMissingDeps
	}

	if err := deps.Check(); err != nil {
		return err
	}

	s.deps = deps

	app.Route(Path, func(router fiber.Router) {
		router.Get("/new", auth.RequirePermission(deps.Auth, auth.PermUserWrite), s.GetNew)
		router.Post("/new", auth.RequirePermission(deps.Auth, auth.PermUserWrite), s.PostNew)
		router.Get("/:id", s.Get)
		router.Post("/:id", auth.RequireIdentity(), s.Post)
	})

	return nil
}

// GetNew renders the empty advert form.
func (s *Service) GetNew(c *fiber.Ctx) error {
	return s.renderNew(c, fiber.Map{})
}

// PostNew creates an unpublished advert owned by the current user.
func (s *Service) PostNew(c *fiber.Ctx) error {
	var f newForm

	if err := c.BodyParser(&f); err != nil {
		c.Status(fiber.StatusBadRequest)
		return s.renderNew(c, fiber.Map{"Error": msgInvalidForm})
	}

	if err := s.deps.Validate.Struct(f); err != nil {
		c.Status(fiber.StatusBadRequest)
		return s.renderNew(c, fiber.Map{"Error": msgInvalidForm, "Form": f})
	}

	id := auth.CurrentIdentity(c)

	advertID, err := advert.Create(c.UserContext(), s.deps.DB, id.ID, f.Title, f.Content)
	if err != nil {
		return err //nolint:wrapcheck
	}

	log.Info().Uint64("user_id", id.ID).Uint64("advert_id", advertID).Msg("advert created")

	return c.Redirect(URL(advertID))
}

// Get renders an advert the viewer is allowed to see. Hidden and absent adverts are both 404.
func (s *Service) Get(c *fiber.Ctx) error {
	advertID, err := handler.ParseID(c, "id")
	if err != nil {
		return err
	}

	viewer, perms, err := s.viewer(c)
	if err != nil {
		return err
	}

	ad, isOwner, err := advert.Get(c.UserContext(), s.deps.DB, viewer, advertID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	nav := navigation.Home(ad.Title, navigation.SectionItem).AddBreadcrumb(ad.Title, URL(ad.ID), true)

	return handler.View(c, s.deps, TemplateItem, nav, fiber.Map{
		"Advert":       ad,
		"IsOwner":      isOwner,
		"CanPublish":   !ad.Published && perms.Has(auth.PermAdminWrite),
		"CanUnpublish": ad.Published && (isOwner || perms.Has(auth.PermAdminWrite)),
	})
}

// Post changes the publication of an advert. Publishing needs admin.write. Unpublishing needs
// ownership or admin.write; ownership is checked against the ownership table, never inferred.
func (s *Service) Post(c *fiber.Ctx) error {
	advertID, err := handler.ParseID(c, "id")
	if err != nil {
		return err
	}

	var f editForm

	if err = c.BodyParser(&f); err != nil {
		return fiber.ErrBadRequest
	}

	if err = s.deps.Validate.Struct(f); err != nil {
		return fiber.ErrBadRequest
	}

	viewer, perms, err := s.viewer(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()

	// unknown and hidden adverts are not revealed by the edit path either
	if _, _, err = advert.Get(ctx, s.deps.DB, viewer, advertID); err != nil {
		return err //nolint:wrapcheck
	}

	id := auth.CurrentIdentity(c)

	allowed := perms.Has(auth.PermAdminWrite)

	if !allowed && f.Action == ActionUnpublish {
		if allowed, err = advert.BelongsTo(ctx, s.deps.DB, id.ID, advertID); err != nil {
			return err //nolint:wrapcheck
		}
	}

	if !allowed {
		log.Warn().Uint64("user_id", id.ID).Uint64("advert_id", advertID).Str("action", f.Action).
			Msg("advert edit refused")

		return fiber.ErrForbidden
	}

	if err = advert.SetPublished(ctx, s.deps.DB, advertID, f.Action == ActionPublish); err != nil {
		return err //nolint:wrapcheck
	}

	log.Info().Uint64("user_id", id.ID).Uint64("advert_id", advertID).Str("action", f.Action).
		Msg("advert publication changed")

	return c.Redirect(URL(advertID))
}

// viewer describes the current request for the visibility rules.
func (s *Service) viewer(c *fiber.Ctx) (advert.Viewer, auth.PermissionSet, error) {
	id := auth.CurrentIdentity(c)
	if id == nil {
		return advert.Anonymous(), auth.NewPermissionSet(), nil
	}

	perms, err := auth.Permissions(c, s.deps.Auth)
	if err != nil {
		return advert.Viewer{}, nil, err //nolint:wrapcheck
	}

	return advert.User(id.ID, perms.Has(auth.PermAdminRead)), perms, nil
}

func (s *Service) renderNew(c *fiber.Ctx, data fiber.Map) error {
	nav := navigation.Home("New advert", navigation.SectionItem).AddBreadcrumb("New advert", Path+"/new", true)

	return handler.View(c, s.deps, TemplateNew, nav, data)
}
