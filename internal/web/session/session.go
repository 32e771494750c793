// Package session keeps the logged in user id in a server side session.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/fiber/v2/utils"
)

const (
	// CookieName is the name of the session id cookie.
	CookieName = "session"

	userIDKey = "user_id"
)

// Manager wraps the fiber session store. The session holds nothing but the user id.
type Manager struct {
	store *session.Store
}

// Config configures a Manager.
type Config struct {
	// Storage backs the sessions. Nil keeps them in process memory.
	Storage fiber.Storage
	// Expiration is the idle lifetime of a session.
	Expiration time.Duration
	// Secure marks the cookie https only.
	Secure bool
}

// New creates a session manager.
func New(cfg Config) *Manager {
	return &Manager{
		store: session.New(session.Config{
			Storage:        cfg.Storage,
			Expiration:     cfg.Expiration,
			KeyLookup:      "cookie:" + CookieName,
			CookieHTTPOnly: true,
			CookieSecure:   cfg.Secure,
			CookieSameSite: fiber.CookieSameSiteLaxMode,
			KeyGenerator:   utils.UUIDv4,
		}),
	}
}

// Store returns the underlying store, e.g. for the CSRF middleware.
func (m *Manager) Store() *session.Store {
	return m.store
}

// UserID returns the user id of the request session, if any.
func (m *Manager) UserID(c *fiber.Ctx) (uint64, bool, error) {
	sess, err := m.store.Get(c)
	if err != nil {
		return 0, false, fmt.Errorf("load session: %w", err)
	}

	id, ok := sess.Get(userIDKey).(uint64)
	if !ok || id == 0 {
		return 0, false, nil
	}

	return id, true, nil
}

// Login starts a new session for userID. The session id is regenerated so an id issued
// before login can not be reused.
func (m *Manager) Login(c *fiber.Ctx, userID uint64) error {
	if userID == 0 {
		return errors.New("user id must not be zero")
	}

	sess, err := m.store.Get(c)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	if err = sess.Regenerate(); err != nil {
		return fmt.Errorf("regenerate session: %w", err)
	}

	sess.Set(userIDKey, userID)

	if err = sess.Save(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	return nil
}

// Logout destroys the request session.
func (m *Manager) Logout(c *fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	if err = sess.Destroy(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}

	return nil
}
