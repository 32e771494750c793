// Package moderator serves the moderation dashboard: user activation and advert publication.
package moderator

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/simple-bulletin/simple-bulletin/internal/auth"
	"github.com/simple-bulletin/simple-bulletin/internal/db/controller/advert"
	"github.com/simple-bulletin/simple-bulletin/internal/db/controller/user"
	"github.com/simple-bulletin/simple-bulletin/internal/db/models"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler"
	"github.com/simple-bulletin/simple-bulletin/internal/web/navigation"
	"github.com/simple-bulletin/simple-bulletin/internal/web/pagination"
)

const (
	// Path is the moderation dashboard path.
	Path = "/mod"

	// TemplateName is the dashboard template.
	TemplateName = "mod"

	// UserPageParam and AdvertPageParam carry the page of each listing.
	UserPageParam   = "user_page"
	AdvertPageParam = "advert_page"
)

// Moderation actions, the values of the "action" form field.
const (
	ActionActivateUser    = "au"
	ActionDeactivateUser  = "du"
	ActionPublishAdvert   = "pa"
	ActionUnpublishAdvert = "ua"
)

// Service is the moderation handler service.
type Service struct {
	deps *handler.Deps
}

var _ handler.Service = (*Service)(nil)

type editForm struct {
	Action     string `form:"action"      validate:"required,oneof=au du pa ua"`
	ID         uint64 `form:"id"          validate:"required"`
	UserPage   int    `form:"user_page"`
	AdvertPage int    `form:"advert_page"`
}

// Init registers the dashboard: reading needs admin.read, changes need admin.write.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil {
		return handler.ErrMissingDeps
	}

	if err := deps.Check(); err != nil {
		return err
	}

	s.deps = deps

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, auth.RequirePermission(deps.Auth, auth.PermAdminRead), s.Get)
		router.Post(handler.RootPath, auth.RequirePermission(deps.Auth, auth.PermAdminWrite), s.Post)
	})

	return nil
}

// Get renders a page of users and a page of adverts. Both are loaded concurrently.
func (s *Service) Get(c *fiber.Ctx) error {
	limit := s.deps.Cfg.Board.ModeratorPageSize
	userPage := pagination.Page(c.QueryInt(UserPageParam, 1))
	advertPage := pagination.Page(c.QueryInt(AdvertPageParam, 1))

	var (
		users       []models.User
		adverts     []models.Advert
		userTotal   int64
		advertTotal int64
	)

	g, ctx := errgroup.WithContext(c.UserContext())

	g.Go(func() error {
		var err error
		users, userTotal, err = user.List(ctx, s.deps.DB, limit, pagination.Offset(userPage, limit))

		return err //nolint:wrapcheck
	})

	g.Go(func() error {
		var err error
		adverts, advertTotal, err = advert.ListAll(ctx, s.deps.DB, limit, pagination.Offset(advertPage, limit))

		return err //nolint:wrapcheck
	})

	if err := g.Wait(); err != nil {
		return err //nolint:wrapcheck
	}

	userPager := pagination.New(userPage, userTotal, limit, UserPageParam)
	advertPager := pagination.New(advertPage, advertTotal, limit, AdvertPageParam)

	nav := navigation.Home("Moderation", navigation.SectionModeration).AddBreadcrumb("Moderation", Path, true)

	return handler.View(c, s.deps, TemplateName, nav, fiber.Map{
		"Users":            users,
		"UserPage":         userPager.Page,
		"TotalUserPages":   userPager.TotalPages,
		"UserPager":        userPager,
		"Adverts":          adverts,
		"AdvertPage":       advertPager.Page,
		"TotalAdvertPages": advertPager.TotalPages,
		"AdvertPager":      advertPager,
	})
}

// Post applies one moderation action and returns to the same pages of the dashboard.
func (s *Service) Post(c *fiber.Ctx) error {
	var f editForm

	if err := c.BodyParser(&f); err != nil {
		return fiber.ErrBadRequest
	}

	if err := s.deps.Validate.Struct(f); err != nil {
		return fiber.ErrBadRequest
	}

	ctx := c.UserContext()

	var err error

	switch f.Action {
	case ActionActivateUser:
		err = user.SetActive(ctx, s.deps.DB, f.ID, true)
	case ActionDeactivateUser:
		err = user.SetActive(ctx, s.deps.DB, f.ID, false)
	case ActionPublishAdvert:
		err = advert.SetPublished(ctx, s.deps.DB, f.ID, true)
	case ActionUnpublishAdvert:
		err = advert.SetPublished(ctx, s.deps.DB, f.ID, false)
	}

	if err != nil {
		return err //nolint:wrapcheck
	}

	log.Info().Uint64("moderator_id", auth.CurrentIdentity(c).ID).Str("action", f.Action).Uint64("target_id", f.ID).
		Msg("moderation action applied")

	return c.Redirect(RedirectURL(f.AdvertPage, f.UserPage))
}

// RedirectURL returns the dashboard at the given pages.
func RedirectURL(advertPage, userPage int) string {
	q := url.Values{}
	q.Set(AdvertPageParam, strconv.Itoa(pagination.Page(advertPage)))
	q.Set(UserPageParam, strconv.Itoa(pagination.Page(userPage)))

	return Path + "?" + q.Encode()
}
