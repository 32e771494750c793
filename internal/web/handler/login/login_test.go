package login_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simple-bulletin/simple-bulletin/internal/db/controller/user"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler/handlertest"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler/login"
	"github.com/simple-bulletin/simple-bulletin/internal/web/session"
)

func newEnv(t *testing.T) *handlertest.Env {
	t.Helper()

	env := handlertest.New(t)
	require.NoError(t, (&login.Service{}).Init(env.App, env.Deps))

	return env
}

func register(t *testing.T, env *handlertest.Env, username, password string, active bool) uint64 {
	t.Helper()

	ctx := context.Background()

	id, err := env.Deps.Auth.Register(ctx, username, password)
	require.NoError(t, err)

	if active {
		require.NoError(t, user.SetActive(ctx, env.Deps.DB, id.ID, true))
	}

	return id.ID
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"", "/"},
		{"/profile", "/profile"},
		{"/item/3?x=1", "/item/3?x=1"},
		{"profile", "/"},
		{"//evil.example", "/"},
		{"/\\evil.example", "/"},
		{"https://evil.example/", "/"},
		{"javascript:alert(1)", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			assert.Equal(t, tt.want, login.SafeNext(tt.next))
		})
	}
}

func TestGet_RendersForm(t *testing.T) {
	env := newEnv(t)

	resp := env.Get(t, login.Path+"?next=/profile", nil)
	assert.Equal(t, fiber.StatusOK, resp.Status)
	assert.Equal(t, login.TemplateName, resp.Body)

	_, data := env.Views.Last()
	assert.Equal(t, "/profile", data["Next"])
}

func TestPost_Success_RedirectsToNext(t *testing.T) {
	env := newEnv(t)
	register(t, env, "alice", "secret-password", true)

	resp := env.Post(t, login.Path, url.Values{
		"username": {"alice"},
		"password": {"secret-password"},
		"next":     {"/profile"},
	}, nil)

	assert.Equal(t, fiber.StatusFound, resp.Status)
	assert.Equal(t, "/profile", resp.Location)

	var cookie *http.Cookie

	for _, c := range resp.Cookies {
		if c.Name == session.CookieName {
			cookie = c
		}
	}

	require.NotNil(t, cookie, "session cookie expected")

	// an already logged in user skips the form
	again := env.Get(t, login.Path, cookie)
	assert.Equal(t, fiber.StatusFound, again.Status)
	assert.Equal(t, "/", again.Location)
}

func TestPost_ForeignNextIsIgnored(t *testing.T) {
	env := newEnv(t)
	register(t, env, "alice", "secret-password", true)

	resp := env.Post(t, login.Path, url.Values{
		"username": {"alice"},
		"password": {"secret-password"},
		"next":     {"https://evil.example/"},
	}, nil)

	assert.Equal(t, fiber.StatusFound, resp.Status)
	assert.Equal(t, "/", resp.Location)
}

func TestPost_Rejected(t *testing.T) {
	env := newEnv(t)
	register(t, env, "alice", "secret-password", true)
	register(t, env, "bob", "secret-password", false)

	tests := []struct {
		name     string
		form     url.Values
		wantCode int
		wantBody string
	}{
		{
			name:     "wrong password",
			form:     url.Values{"username": {"alice"}, "password": {"nope"}},
			wantCode: fiber.StatusUnauthorized,
			wantBody: "login: Invalid username or password",
		},
		{
			name:     "unknown user",
			form:     url.Values{"username": {"mallory"}, "password": {"secret-password"}},
			wantCode: fiber.StatusUnauthorized,
			wantBody: "login: Invalid username or password",
		},
		{
			name:     "inactive user",
			form:     url.Values{"username": {"bob"}, "password": {"secret-password"}},
			wantCode: fiber.StatusUnauthorized,
			wantBody: "login: Invalid username or password",
		},
		{
			name:     "missing password",
			form:     url.Values{"username": {"alice"}},
			wantCode: fiber.StatusBadRequest,
			wantBody: "login: Please enter username and password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.Post(t, login.Path, tt.form, nil)

			assert.Equal(t, tt.wantCode, resp.Status)
			assert.Equal(t, tt.wantBody, resp.Body)
			assert.Empty(t, resp.Location)
		})
	}
}
