package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/simple-bulletin/simple-bulletin/internal/auth"
	"github.com/simple-bulletin/simple-bulletin/internal/web/navigation"
)

// CSRFToken returns the CSRF token of the request for forms.
func CSRFToken(c *fiber.Ctx) string {
	token, _ := c.Locals(CSRFContextKey).(string)
	return token
}

// View renders name in the base layout together with the data every page needs:
// title, navigation, current user, permissions and the CSRF token.
func View(c *fiber.Ctx, deps *Deps, name string, nav *navigation.Context, data fiber.Map) error {
	perms, err := auth.Permissions(c, deps.Auth)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if data == nil {
		data = fiber.Map{}
	}

	data["Title"] = deps.Cfg.Title
	data["Navigation"] = nav
	data["CurrentUser"] = auth.CurrentIdentity(c)
	data["Permissions"] = perms
	data["CSRFToken"] = CSRFToken(c)

	return c.Render(name, data, BaseLayout)
}

// ParseID reads a positive numeric route parameter. Anything else is a 404.
func ParseID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id < 1 {
		return 0, fiber.ErrNotFound
	}

	return uint64(id), nil
}
