// Package handlertest wires handlers into a test fiber app backed by an in-memory database.
package handlertest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/simple-bulletin/simple-bulletin/internal/auth"
	"github.com/simple-bulletin/simple-bulletin/internal/config"
	"github.com/simple-bulletin/simple-bulletin/internal/db/dbtest"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler"
	"github.com/simple-bulletin/simple-bulletin/internal/web/session"
)

// loginPath is a test only route starting a session for a user id.
const loginPath = "/_test/login/"

// Views is a minimal fiber.Views engine recording what was rendered.
// It writes the template name and, if present, the "Error" field.
type Views struct {
	mu   sync.Mutex
	name string
	data fiber.Map
}

// Load implements fiber.Views.
func (v *Views) Load() error { return nil }

// Render implements fiber.Views.
func (v *Views) Render(w io.Writer, name string, data any, _ ...string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.name = name
	v.data, _ = data.(fiber.Map)

	_, _ = io.WriteString(w, name)

	if msg, ok := v.data["Error"].(string); ok && msg != "" {
		_, _ = io.WriteString(w, ": "+msg)
	}

	return nil
}

// Last returns the last rendered template and its data.
func (v *Views) Last() (string, fiber.Map) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.name, v.data
}

// Env is a test fiber app with its dependencies.
type Env struct {
	App   *fiber.App
	Deps  *handler.Deps
	Views *Views
}

// Config returns a configuration with small pages and cheap hashing.
func Config() *config.Config {
	return &config.Config{
		Title: "Bulletin",
		Webserver: config.Webserver{
			Port:          3000,
			URL:           "http://localhost:3000",
			ShutDownTime:  1,
			CheckAliveURI: "/checkalive",
		},
		DB: config.DB{AcquireTimeout: 5 * time.Second},
		Auth: config.Auth{
			HashWorkers: 2,
			Argon2:      config.Argon2{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32},
		},
		Board: config.Board{PageSize: 10, ProfilePageSize: 10, ModeratorPageSize: 10},
	}
}

// NewDeps returns handler dependencies over a fresh migrated in-memory database
// and in-memory sessions.
func NewDeps(t *testing.T) *handler.Deps {
	t.Helper()

	cfg := Config()
	db := dbtest.New(t)

	return &handler.Deps{
		Cfg:      cfg,
		DB:       db,
		Auth:     auth.NewService(db, auth.NewHasher(cfg.Auth)),
		Sessions: session.New(session.Config{Expiration: time.Hour}),
		Validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// New returns an Env. The caller registers its handler with h.Init(env.App, env.Deps).
// Requests are identified through the session like in production; CSRF is not checked here.
func New(t *testing.T) *Env {
	t.Helper()

	deps := NewDeps(t)
	cfg := deps.Cfg

	views := &Views{}
	app := fiber.New(fiber.Config{
		Views:        views,
		ErrorHandler: handler.NewErrorHandler(cfg.Title),
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	app.Get(loginPath+":id", func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return fiber.ErrBadRequest
		}

		return deps.Sessions.Login(c, id)
	})

	app.Use(auth.Identify(deps.Auth, deps.Sessions))

	return &Env{App: app, Deps: deps, Views: views}
}

// Login returns a session cookie for userID.
func (e *Env) Login(t *testing.T, userID uint64) *http.Cookie {
	t.Helper()

	resp, err := e.App.Test(httptest.NewRequest(fiber.MethodGet, loginPath+strconv.FormatUint(userID, 10), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}

	t.Fatal("no session cookie issued")

	return nil
}

// Response is a finished test request.
type Response struct {
	Status   int
	Body     string
	Location string
	Cookies  []*http.Cookie
}

// Get performs a GET request.
func (e *Env) Get(t *testing.T, path string, cookie *http.Cookie) Response {
	t.Helper()

	return e.do(t, httptest.NewRequest(fiber.MethodGet, path, nil), cookie)
}

// Post performs a form POST request.
func (e *Env) Post(t *testing.T, path string, form url.Values, cookie *http.Cookie) Response {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	return e.do(t, req, cookie)
}

func (e *Env) do(t *testing.T, req *http.Request, cookie *http.Cookie) Response {
	t.Helper()

	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return Response{
		Status:   resp.StatusCode,
		Body:     string(body),
		Location: resp.Header.Get(fiber.HeaderLocation),
		Cookies:  resp.Cookies(),
	}
}
