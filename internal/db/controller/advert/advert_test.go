package advert

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/simple-bulletin/simple-bulletin/internal/db/dbtest"
	"github.com/simple-bulletin/simple-bulletin/internal/db/models"
	"github.com/simple-bulletin/simple-bulletin/internal/db/storage"
)

func TestVisible(t *testing.T) {
	owner := uint64(1)
	other := uint64(2)

	testCases := []struct {
		name        string
		viewer      Viewer
		published   bool
		wantVisible bool
		wantOwner   bool
	}{
		{name: "anonymous draft", viewer: Anonymous(), wantVisible: false},
		{name: "anonymous published", viewer: Anonymous(), published: true, wantVisible: true},
		{name: "owner draft", viewer: User(owner, false), wantVisible: true, wantOwner: true},
		{name: "owner published", viewer: User(owner, false), published: true, wantVisible: true, wantOwner: true},
		{name: "stranger draft", viewer: User(other, false), wantVisible: false},
		{name: "stranger published", viewer: User(other, false), published: true, wantVisible: true},
		{name: "admin draft", viewer: User(other, true), wantVisible: true, wantOwner: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			visible, isOwner := Visible(tc.viewer, tc.published, &owner)
			assert.Equal(t, tc.wantVisible, visible)
			assert.Equal(t, tc.wantOwner, isOwner)
		})
	}
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	alice := dbtest.CreateUser(t, db, "alice", true, models.GroupUsers)
	bob := dbtest.CreateUser(t, db, "bob", true, models.GroupUsers)
	draft := dbtest.CreateAdvert(t, db, alice.ID, "draft", false)
	public := dbtest.CreateAdvert(t, db, alice.ID, "public", true)

	t.Run("anonymous cannot see a draft", func(t *testing.T) {
		ad, isOwner, err := Get(ctx, db, Anonymous(), draft.ID)
		require.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, ad)
		assert.False(t, isOwner)
	})

	t.Run("anonymous sees published without ownership", func(t *testing.T) {
		ad, isOwner, err := Get(ctx, db, Anonymous(), public.ID)
		require.NoError(t, err)
		assert.Equal(t, public.ID, ad.ID)
		assert.Equal(t, "public", ad.Title)
		assert.False(t, isOwner)
	})

	t.Run("another user sees published without ownership", func(t *testing.T) {
		_, isOwner, err := Get(ctx, db, User(bob.ID, false), public.ID)
		require.NoError(t, err)
		assert.False(t, isOwner)
	})

	t.Run("owner sees own draft", func(t *testing.T) {
		ad, isOwner, err := Get(ctx, db, User(alice.ID, false), draft.ID)
		require.NoError(t, err)
		assert.Equal(t, draft.ID, ad.ID)
		assert.True(t, isOwner)
	})

	t.Run("another user cannot see a draft", func(t *testing.T) {
		_, _, err := Get(ctx, db, User(bob.ID, false), draft.ID)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("admin sees any draft", func(t *testing.T) {
		_, isOwner, err := Get(ctx, db, User(bob.ID, true), draft.ID)
		require.NoError(t, err)
		assert.True(t, isOwner)
	})

	t.Run("missing advert matches hidden advert", func(t *testing.T) {
		_, _, errMissing := Get(ctx, db, Anonymous(), 9999)
		_, _, errHidden := Get(ctx, db, Anonymous(), draft.ID)
		require.ErrorIs(t, errMissing, ErrNotFound)
		assert.Equal(t, errHidden, errMissing)
	})
}

func TestListPublishedPagination(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	alice := dbtest.CreateUser(t, db, "alice", true)
	for i := range 25 {
		dbtest.CreateAdvert(t, db, alice.ID, fmt.Sprintf("ad %d", i), true)
	}
	dbtest.CreateAdvert(t, db, alice.ID, "hidden", false)

	var (
		seen     = map[uint64]bool{}
		previous = ^uint64(0)
	)

	for i, want := range []int{10, 10, 5} {
		adverts, total, err := ListPublished(ctx, db, 10, i*10)
		require.NoError(t, err)
		assert.Len(t, adverts, want)
		assert.Equal(t, int64(25), total)

		for _, ad := range adverts {
			assert.True(t, ad.Published)
			assert.Less(t, ad.ID, previous, "newest first")
			assert.False(t, seen[ad.ID])
			seen[ad.ID] = true
			previous = ad.ID
		}
	}

	assert.Len(t, seen, 25)
}

func TestListByOwner(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	alice := dbtest.CreateUser(t, db, "alice", true)
	bob := dbtest.CreateUser(t, db, "bob", true)
	dbtest.CreateAdvert(t, db, alice.ID, "draft", false)
	dbtest.CreateAdvert(t, db, alice.ID, "public", true)
	dbtest.CreateAdvert(t, db, bob.ID, "bob's", true)

	adverts, total, err := ListByOwner(ctx, db, alice.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, adverts, 2)
	assert.Equal(t, "public", adverts[0].Title)
	assert.Equal(t, "draft", adverts[1].Title)
}

func TestListAll(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	alice := dbtest.CreateUser(t, db, "alice", true)
	dbtest.CreateAdvert(t, db, alice.ID, "draft", false)
	dbtest.CreateAdvert(t, db, alice.ID, "public", true)

	adverts, total, err := ListAll(ctx, db, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, adverts, 1)
	assert.Equal(t, "draft", adverts[0].Title)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	alice := dbtest.CreateUser(t, db, "alice", true)

	id, err := Create(ctx, db, alice.ID, "bike", "red, two wheels")
	require.NoError(t, err)
	assert.NotZero(t, id)

	ad, isOwner, err := Get(ctx, db, User(alice.ID, false), id)
	require.NoError(t, err)
	assert.True(t, isOwner)
	assert.False(t, ad.Published, "new adverts start unpublished")

	owned, err := BelongsTo(ctx, db, alice.ID, id)
	require.NoError(t, err)
	assert.True(t, owned)
}

func TestCreateIsAtomic(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	alice := dbtest.CreateUser(t, db, "alice", true)

	injected := errors.New("injected ownership failure")
	require.NoError(t, db.Callback().Create().Before("gorm:create").
		Register("test:fail_ownership", func(tx *gorm.DB) {
			if tx.Statement.Table == "users_adverts" {
				_ = tx.AddError(injected)
			}
		}))

	_, err := Create(ctx, db, alice.ID, "bike", "red")
	require.ErrorIs(t, err, storage.ErrStorageUnavailable)
	require.ErrorIs(t, err, injected)

	owned, total, err := ListByOwner(ctx, db, alice.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, owned)
	assert.Zero(t, total)

	all, total, err := ListAll(ctx, db, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, all, "no dangling advert")
	assert.Zero(t, total)
}

func TestBelongsTo(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	alice := dbtest.CreateUser(t, db, "alice", true)
	bob := dbtest.CreateUser(t, db, "bob", true)
	ad := dbtest.CreateAdvert(t, db, alice.ID, "mine", false)

	owned, err := BelongsTo(ctx, db, alice.ID, ad.ID)
	require.NoError(t, err)
	assert.True(t, owned)

	owned, err = BelongsTo(ctx, db, bob.ID, ad.ID)
	require.NoError(t, err)
	assert.False(t, owned)

	owned, err = BelongsTo(ctx, db, alice.ID, 9999)
	require.NoError(t, err)
	assert.False(t, owned)
}

func TestSetPublishedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)

	alice := dbtest.CreateUser(t, db, "alice", true)
	ad := dbtest.CreateAdvert(t, db, alice.ID, "mine", false)

	for range 2 {
		require.NoError(t, SetPublished(ctx, db, ad.ID, true))

		got, _, err := Get(ctx, db, Anonymous(), ad.ID)
		require.NoError(t, err)
		assert.True(t, got.Published)
	}

	for range 2 {
		require.NoError(t, SetPublished(ctx, db, ad.ID, false))

		_, _, err := Get(ctx, db, Anonymous(), ad.ID)
		require.ErrorIs(t, err, ErrNotFound)
	}

	require.NoError(t, SetPublished(ctx, db, 9999, true), "missing advert is not an error")
}

// mockDB returns a gorm handle whose every statement fails like an exhausted pool.
func mockDB(t *testing.T) *gorm.DB {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger:                 logger.Discard,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	poolErr := errors.New("pool timed out")
	for range 4 {
		mock.ExpectQuery(".*").WillReturnError(poolErr)
		mock.ExpectExec(".*").WillReturnError(poolErr)
	}

	mock.MatchExpectationsInOrder(false)

	return db
}

func TestStorageUnavailable(t *testing.T) {
	ctx := context.Background()

	t.Run("get", func(t *testing.T) {
		_, _, err := Get(ctx, mockDB(t), Anonymous(), 1)
		require.ErrorIs(t, err, storage.ErrStorageUnavailable)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("list", func(t *testing.T) {
		_, _, err := ListPublished(ctx, mockDB(t), 10, 0)
		require.ErrorIs(t, err, storage.ErrStorageUnavailable)
	})

	t.Run("belongs to", func(t *testing.T) {
		_, err := BelongsTo(ctx, mockDB(t), 1, 1)
		require.ErrorIs(t, err, storage.ErrStorageUnavailable)
	})

	t.Run("set published", func(t *testing.T) {
		err := SetPublished(ctx, mockDB(t), 1, true)
		require.ErrorIs(t, err, storage.ErrStorageUnavailable)
	})
}
