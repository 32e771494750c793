//go:build integration

package advert

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/simple-bulletin/simple-bulletin/internal/db/migrate"
	"github.com/simple-bulletin/simple-bulletin/internal/db/models"
)

// setupPostgres starts a postgres container and returns a migrated gorm handle.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("bulletin_test"),
		postgres.WithUsername("bulletin"),
		postgres.WithPassword("bulletin_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := container.Terminate(cleanupCtx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(connStr), &gorm.Config{Logger: logger.Discard, TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, migrate.Run(ctx, db))

	return db
}

func TestPostgresAccess(t *testing.T) {
	ctx := context.Background()
	db := setupPostgres(t)

	// re-running against a migrated database changes nothing
	require.NoError(t, migrate.Run(ctx, db))

	var groups int64
	require.NoError(t, db.Model(&models.Group{}).Count(&groups).Error)
	assert.Equal(t, int64(2), groups)

	owner := models.User{Username: "alice", PasswordHash: "x", Active: true}
	require.NoError(t, db.Create(&owner).Error)

	for i := range 25 {
		id, err := Create(ctx, db, owner.ID, fmt.Sprintf("ad %d", i), "content")
		require.NoError(t, err)

		if i%5 != 0 {
			require.NoError(t, SetPublished(ctx, db, id, true))
		}
	}

	adverts, total, err := ListPublished(ctx, db, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(20), total)
	assert.Len(t, adverts, 10)

	owned, total, err := ListByOwner(ctx, db, owner.ID, 30, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Len(t, owned, 25)

	draft := owned[len(owned)-1]
	assert.False(t, draft.Published)

	_, _, err = Get(ctx, db, Anonymous(), draft.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, isOwner, err := Get(ctx, db, User(owner.ID, false), draft.ID)
	require.NoError(t, err)
	assert.True(t, isOwner)
}
