package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/eventory/internal/platform/domain"
	"github.com/smallbiznis/eventory/internal/platform/repository"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, rdb *redis.Client) (domain.Service, *gorm.DB) {
	t.Helper()
	conn, err := db.NewTest(&domain.Platform{})
	require.NoError(t, err)
	svc := New(Params{DB: conn, Log: zaptest.NewLogger(t), Repo: repository.Provide(), Redis: rdb})
	return svc, conn
}

func TestResolveByIDSlugAndDomain(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Pr Events", Domain: "Ops.Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "pr-events", created.Slug)

	for _, key := range []string{created.ID.String(), "pr-events", "ops.example.com", " PR-EVENTS "} {
		got, err := svc.Resolve(ctx, key)
		require.NoError(t, err, key)
		assert.Equal(t, created.ID, got.ID)
	}
}

func TestResolveUnknownAndInactive(t *testing.T) {
	svc, conn := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Resolve(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidPlatform)

	_, err = svc.Resolve(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Dormant"})
	require.NoError(t, err)
	require.NoError(t, conn.Model(&domain.Platform{}).Where("id = ?", created.ID).Update("is_active", false).Error)

	_, err = svc.Resolve(ctx, "dormant")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveUsesRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc, _ := newTestService(t, rdb)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Cached"})
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, "cached")
	require.NoError(t, err)
	assert.True(t, mr.Exists(redisKeyPrefix+"cached"))

	name := "Renamed"
	pctx := platformctx.WithPlatformID(ctx, created.ID)
	_, err = svc.Update(pctx, domain.UpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.False(t, mr.Exists(redisKeyPrefix+"cached"))

	got, err := svc.Resolve(ctx, "cached")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
}

func TestCreateDuplicateSlug(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "Twin"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Twin"})
	assert.ErrorIs(t, err, domain.ErrSlugExists)
}
