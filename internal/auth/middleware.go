package auth

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/simple-bulletin/simple-bulletin/internal/web/session"
)

// Keys of the values stored in fiber.Locals.
const (
	LocalsIdentity    = "identity"
	LocalsPermissions = "permissions"
	LocalsUserID      = "user_id"
)

// LoginPath is where unauthenticated browsers are sent.
const LoginPath = "/login"

// Identify is a Fiber middleware resolving the session user id to an Identity.
// Sessions of unknown or deactivated users are treated as anonymous.
func Identify(backend Backend, sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := sessions.UserID(c)
		if err != nil {
			log.Error().Err(err).Msg("failed to read session")

			return fiber.ErrInternalServerError
		}

		if !ok {
			return c.Next()
		}

		id, err := backend.Identity(c.UserContext(), userID)

		switch {
		case errors.Is(err, ErrUnknownIdentity):
			log.Debug().Uint64("user_id", userID).Msg("session user is unknown or inactive")

			return c.Next()
		case err != nil:
			return err //nolint:wrapcheck
		}

		c.Locals(LocalsIdentity, id)
		c.Locals(LocalsUserID, id.ID)

		return c.Next()
	}
}

// CurrentIdentity returns the identity of the request, nil for anonymous visitors.
func CurrentIdentity(c *fiber.Ctx) *Identity {
	id, _ := c.Locals(LocalsIdentity).(*Identity)
	return id
}

// Permissions returns the permissions of the request identity. They are resolved at most
// once per request and kept in the request locals, never longer.
func Permissions(c *fiber.Ctx, backend Backend) (PermissionSet, error) {
	if perms, ok := c.Locals(LocalsPermissions).(PermissionSet); ok {
		return perms, nil
	}

	perms, err := backend.PermissionsFor(c.UserContext(), CurrentIdentity(c))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	c.Locals(LocalsPermissions, perms)

	return perms, nil
}

// RequireIdentity creates Fiber middleware that requires a logged in user.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentIdentity(c) == nil {
			return unauthenticated(c)
		}

		return c.Next()
	}
}

// RequirePermission creates Fiber middleware that requires a specific permission.
func RequirePermission(backend Backend, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := CurrentIdentity(c)
		if id == nil {
			return unauthenticated(c)
		}

		perms, err := Permissions(c, backend)
		if err != nil {
			return err
		}

		if !perms.Has(permission) {
			log.Warn().Uint64("user_id", id.ID).Str("permission", permission).
				Msg("user lacks required permission")

			return fiber.ErrForbidden
		}

		return c.Next()
	}
}

// unauthenticated sends browsers to the login page and answers 401 to everything else.
func unauthenticated(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodGet {
		return c.Redirect(LoginPath + "?next=" + url.QueryEscape(c.OriginalURL()))
	}

	return fiber.ErrUnauthorized
}
