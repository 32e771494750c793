package item_test

import (
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simple-bulletin/simple-bulletin/internal/auth"
	"github.com/simple-bulletin/simple-bulletin/internal/db/dbtest"
	"github.com/simple-bulletin/simple-bulletin/internal/db/models"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler/handlertest"
	"github.com/simple-bulletin/simple-bulletin/internal/web/handler/item"
)

type fixture struct {
	env       *handlertest.Env
	owner     *http.Cookie
	other     *http.Cookie
	admin     *http.Cookie
	nobody    *http.Cookie
	draft     models.Advert
	published models.Advert
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	env := handlertest.New(t)
	require.NoError(t, (&item.Service{}).Init(env.App, env.Deps))

	db := env.Deps.DB
	owner := dbtest.CreateUser(t, db, "alice", true, models.GroupUsers)
	other := dbtest.CreateUser(t, db, "bob", true, models.GroupUsers)
	admin := dbtest.CreateUser(t, db, "root", true, models.GroupAdmins)
	nobody := dbtest.CreateUser(t, db, "carol", true)

	return fixture{
		env:       env,
		owner:     env.Login(t, owner.ID),
		other:     env.Login(t, other.ID),
		admin:     env.Login(t, admin.ID),
		nobody:    env.Login(t, nobody.ID),
		draft:     dbtest.CreateAdvert(t, db, owner.ID, "draft", false),
		published: dbtest.CreateAdvert(t, db, owner.ID, "published", true),
	}
}

func (f fixture) isPublished(t *testing.T, id uint64) bool {
	t.Helper()

	var ad models.Advert
	require.NoError(t, f.env.Deps.DB.First(&ad, id).Error)

	return ad.Published
}

func TestGet_Visibility(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name        string
		cookie      *http.Cookie
		advert      models.Advert
		wantCode    int
		wantIsOwner bool
	}{
		{name: "anonymous draft", advert: f.draft, wantCode: fiber.StatusNotFound},
		{name: "anonymous published", advert: f.published, wantCode: fiber.StatusOK},
		{name: "owner draft", cookie: f.owner, advert: f.draft, wantCode: fiber.StatusOK, wantIsOwner: true},
		{name: "owner published", cookie: f.owner, advert: f.published, wantCode: fiber.StatusOK, wantIsOwner: true},
		{name: "other user draft", cookie: f.other, advert: f.draft, wantCode: fiber.StatusNotFound},
		{name: "other user published", cookie: f.other, advert: f.published, wantCode: fiber.StatusOK},
		{name: "admin draft", cookie: f.admin, advert: f.draft, wantCode: fiber.StatusOK, wantIsOwner: true},
		{name: "unknown advert", cookie: f.admin, advert: models.Advert{ID: 999}, wantCode: fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.env.Get(t, item.URL(tt.advert.ID), tt.cookie)
			require.Equal(t, tt.wantCode, resp.Status)

			if tt.wantCode != fiber.StatusOK {
				assert.Equal(t, handler.TemplateError, resp.Body)
				return
			}

			assert.Equal(t, item.TemplateItem, resp.Body)

			_, data := f.env.Views.Last()
			assert.Equal(t, tt.wantIsOwner, data["IsOwner"])

			ad, ok := data["Advert"].(*models.Advert)
			require.True(t, ok)
			assert.Equal(t, tt.advert.ID, ad.ID)
		})
	}
}

func TestGet_MalformedID(t *testing.T) {
	f := newFixture(t)

	for _, id := range []string{"0", "-1", "abc"} {
		resp := f.env.Get(t, item.Path+"/"+id, f.admin)
		assert.Equal(t, fiber.StatusNotFound, resp.Status, id)
	}
}

func TestGetNew_PermissionGate(t *testing.T) {
	f := newFixture(t)

	resp := f.env.Get(t, item.Path+"/new", nil)
	assert.Equal(t, fiber.StatusFound, resp.Status)
	assert.Equal(t, auth.LoginPath+"?next="+url.QueryEscape(item.Path+"/new"), resp.Location)

	assert.Equal(t, fiber.StatusForbidden, f.env.Get(t, item.Path+"/new", f.nobody).Status)

	resp = f.env.Get(t, item.Path+"/new", f.owner)
	assert.Equal(t, fiber.StatusOK, resp.Status)
	assert.Equal(t, item.TemplateNew, resp.Body)
}

func TestPostNew(t *testing.T) {
	f := newFixture(t)

	// bob creates, alice is just another user for this advert
	resp := f.env.Post(t, item.Path+"/new", url.Values{
		"title":   {"bike"},
		"content": {"red, barely used"},
	}, f.other)
	require.Equal(t, fiber.StatusFound, resp.Status)

	id, err := strconv.ParseUint(resp.Location[len(item.Path)+1:], 10, 64)
	require.NoError(t, err)

	assert.False(t, f.isPublished(t, id))

	// visible to its owner only
	assert.Equal(t, fiber.StatusOK, f.env.Get(t, resp.Location, f.other).Status)
	assert.Equal(t, fiber.StatusNotFound, f.env.Get(t, resp.Location, f.owner).Status)
	assert.Equal(t, fiber.StatusNotFound, f.env.Get(t, resp.Location, nil).Status)
}

func TestPostNew_Rejected(t *testing.T) {
	f := newFixture(t)

	resp := f.env.Post(t, item.Path+"/new", url.Values{"title": {"no content"}}, f.owner)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
	assert.Contains(t, resp.Body, item.TemplateNew+": ")

	assert.Equal(t, fiber.StatusUnauthorized,
		f.env.Post(t, item.Path+"/new", url.Values{"title": {"t"}, "content": {"c"}}, nil).Status)
	assert.Equal(t, fiber.StatusForbidden,
		f.env.Post(t, item.Path+"/new", url.Values{"title": {"t"}, "content": {"c"}}, f.nobody).Status)

	var count int64
	require.NoError(t, f.env.Deps.DB.Model(&models.Advert{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestPost_PublicationPolicy(t *testing.T) {
	tests := []struct {
		name          string
		cookie        func(f fixture) *http.Cookie
		advert        func(f fixture) models.Advert
		action        string
		wantCode      int
		wantPublished bool
	}{
		{
			name:     "anonymous",
			cookie:   func(fixture) *http.Cookie { return nil },
			advert:   func(f fixture) models.Advert { return f.published },
			action:   item.ActionUnpublish,
			wantCode: fiber.StatusUnauthorized, wantPublished: true,
		},
		{
			name:     "owner unpublishes",
			cookie:   func(f fixture) *http.Cookie { return f.owner },
			advert:   func(f fixture) models.Advert { return f.published },
			action:   item.ActionUnpublish,
			wantCode: fiber.StatusFound, wantPublished: false,
		},
		{
			name:     "owner can not publish",
			cookie:   func(f fixture) *http.Cookie { return f.owner },
			advert:   func(f fixture) models.Advert { return f.draft },
			action:   item.ActionPublish,
			wantCode: fiber.StatusForbidden, wantPublished: false,
		},
		{
			name:     "other user can not unpublish",
			cookie:   func(f fixture) *http.Cookie { return f.other },
			advert:   func(f fixture) models.Advert { return f.published },
			action:   item.ActionUnpublish,
			wantCode: fiber.StatusForbidden, wantPublished: true,
		},
		{
			name:     "other user does not see the draft",
			cookie:   func(f fixture) *http.Cookie { return f.other },
			advert:   func(f fixture) models.Advert { return f.draft },
			action:   item.ActionPublish,
			wantCode: fiber.StatusNotFound, wantPublished: false,
		},
		{
			name:     "admin publishes",
			cookie:   func(f fixture) *http.Cookie { return f.admin },
			advert:   func(f fixture) models.Advert { return f.draft },
			action:   item.ActionPublish,
			wantCode: fiber.StatusFound, wantPublished: true,
		},
		{
			name:     "admin unpublishes",
			cookie:   func(f fixture) *http.Cookie { return f.admin },
			advert:   func(f fixture) models.Advert { return f.published },
			action:   item.ActionUnpublish,
			wantCode: fiber.StatusFound, wantPublished: false,
		},
		{
			name:     "unknown action",
			cookie:   func(f fixture) *http.Cookie { return f.admin },
			advert:   func(f fixture) models.Advert { return f.draft },
			action:   "delete",
			wantCode: fiber.StatusBadRequest, wantPublished: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ad := tt.advert(f)

			resp := f.env.Post(t, item.URL(ad.ID), url.Values{"action": {tt.action}}, tt.cookie(f))
			assert.Equal(t, tt.wantCode, resp.Status)

			if tt.wantCode == fiber.StatusFound {
				assert.Equal(t, item.URL(ad.ID), resp.Location)
			}

			assert.Equal(t, tt.wantPublished, f.isPublished(t, ad.ID))
		})
	}
}
