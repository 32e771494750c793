package session

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(m *Manager) *fiber.App {
	app := fiber.New()

	app.Get("/login/:id", func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return fiber.ErrBadRequest
		}

		return m.Login(c, id)
	})
	app.Get("/whoami", func(c *fiber.Ctx) error {
		id, ok, err := m.UserID(c)
		if err != nil {
			return err
		}

		if !ok {
			return c.SendString("anonymous")
		}

		return c.SendString(strconv.FormatUint(id, 10))
	})
	app.Get("/logout", func(c *fiber.Ctx) error {
		return m.Logout(c)
	})

	return app
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()

	for _, c := range resp.Cookies() {
		if c.Name == CookieName {
			return c
		}
	}

	return nil
}

func get(t *testing.T, app *fiber.App, path string, cookie *http.Cookie) (*http.Response, string) {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, _ := resp.Body.Read(buf)

	return resp, string(buf[:n])
}

func testLoginLogout(t *testing.T, m *Manager) {
	t.Helper()

	app := newTestApp(m)

	_, body := get(t, app, "/whoami", nil)
	assert.Equal(t, "anonymous", body)

	resp, _ := get(t, app, "/login/42", nil)
	cookie := sessionCookie(t, resp)
	require.NotNil(t, cookie)

	_, body = get(t, app, "/whoami", cookie)
	assert.Equal(t, "42", body)

	_, _ = get(t, app, "/logout", cookie)

	_, body = get(t, app, "/whoami", cookie)
	assert.Equal(t, "anonymous", body)
}

func TestManagerMemory(t *testing.T) {
	testLoginLogout(t, New(Config{Expiration: time.Hour}))
}

func TestManagerRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	storage := NewRedisStorage(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "session:")
	testLoginLogout(t, New(Config{Storage: storage, Expiration: time.Hour}))

	assert.Empty(t, mr.Keys(), "logout removes the session")
}

func TestLoginRegeneratesID(t *testing.T) {
	app := newTestApp(New(Config{Expiration: time.Hour}))

	resp, _ := get(t, app, "/login/1", nil)
	first := sessionCookie(t, resp)
	require.NotNil(t, first)

	resp, _ = get(t, app, "/login/2", first)
	second := sessionCookie(t, resp)
	require.NotNil(t, second)

	assert.NotEqual(t, first.Value, second.Value)

	_, body := get(t, app, "/whoami", first)
	assert.Equal(t, "anonymous", body, "old id is invalid after login")
}

func TestLoginRejectsZero(t *testing.T) {
	app := newTestApp(New(Config{Expiration: time.Hour}))

	resp, _ := get(t, app, "/login/0", nil)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
