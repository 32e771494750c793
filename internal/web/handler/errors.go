package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog/log"

	"github.com/simple-bulletin/simple-bulletin/internal/auth"
	"github.com/simple-bulletin/simple-bulletin/internal/db/controller/advert"
)

// APIPrefix is the path prefix of the JSON endpoints; their errors are JSON too.
const APIPrefix = "/api/"

// StatusFor maps an error returned by a handler to a HTTP status.
func StatusFor(err error) int {
	var (
		fe *fiber.Error
		ve validator.ValidationErrors
	)

	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, advert.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, auth.ErrWrongCredentials), errors.Is(err, auth.ErrUnknownIdentity):
		return fiber.StatusUnauthorized
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// NewErrorHandler returns the fiber error handler. Clients only ever see the status text;
// server side failures are logged with their cause.
func NewErrorHandler(title string) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := StatusFor(err)
		message := utils.StatusMessage(code)

		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
		}

		c.Status(code)

		if strings.HasPrefix(c.Path(), APIPrefix) {
			return c.JSON(fiber.Map{"error": message})
		}

		rerr := c.Render(TemplateError, fiber.Map{
			"Title":       title,
			"Status":      code,
			"Message":     message,
			"CurrentUser": auth.CurrentIdentity(c),
			"Permissions": auth.PermissionSet(nil),
			"CSRFToken":   CSRFToken(c),
		}, BaseLayout)
		if rerr != nil {
			log.Error().Err(rerr).Msg("failed to render error page")

			return c.SendString(message)
		}

		return nil
	}
}
