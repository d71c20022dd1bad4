package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/country/domain"
	"github.com/smallbiznis/eventory/internal/country/repository"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T) (domain.Service, context.Context) {
	t.Helper()
	conn, err := db.NewTest(&domain.Country{})
	require.NoError(t, err)
	svc := New(Params{DB: conn, Log: zaptest.NewLogger(t), Repo: repository.Provide()})
	return svc, platformctx.WithPlatformID(context.Background(), uuid.New())
}

func TestCreateNormalizesAndRejectsDuplicates(t *testing.T) {
	svc, ctx := newTestService(t)

	country, err := svc.Create(ctx, domain.CreateRequest{Name: " United Arab Emirates ", ISOCode: "ae"})
	require.NoError(t, err)
	assert.Equal(t, "AE", country.ISOCode)
	assert.Equal(t, "United Arab Emirates", country.Name)
	assert.True(t, country.IsActive)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Emirates", ISOCode: "AE"})
	assert.ErrorIs(t, err, domain.ErrISOCodeExists)

	other := platformctx.WithPlatformID(context.Background(), uuid.New())
	_, err = svc.Create(other, domain.CreateRequest{Name: "Emirates", ISOCode: "AE"})
	assert.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Bad", ISOCode: "A1"})
	assert.ErrorIs(t, err, domain.ErrInvalidISOCode)
}

func TestDeactivateIsIdempotent(t *testing.T) {
	svc, ctx := newTestService(t)

	country, err := svc.Create(ctx, domain.CreateRequest{Name: "Oman", ISOCode: "OM"})
	require.NoError(t, err)

	first, err := svc.Deactivate(ctx, country.ID.String())
	require.NoError(t, err)
	assert.False(t, first.IsActive)

	second, err := svc.Deactivate(ctx, country.ID.String())
	require.NoError(t, err)
	assert.False(t, second.IsActive)
}

func TestDeleteTwiceReturnsNotFound(t *testing.T) {
	svc, ctx := newTestService(t)

	country, err := svc.Create(ctx, domain.CreateRequest{Name: "Qatar", ISOCode: "QA"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, country.ID.String()))
	assert.ErrorIs(t, svc.Delete(ctx, country.ID.String()), domain.ErrNotFound)

	_, err = svc.Get(ctx, country.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// the ISO code is free again once the row is soft-deleted
	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Qatar", ISOCode: "QA"})
	assert.NoError(t, err)
}

func TestListSearchAndPaging(t *testing.T) {
	svc, ctx := newTestService(t)

	for _, c := range []domain.CreateRequest{
		{Name: "Bahrain", ISOCode: "BH"},
		{Name: "Kuwait", ISOCode: "KW"},
		{Name: "Saudi Arabia", ISOCode: "SA"},
	} {
		_, err := svc.Create(ctx, c)
		require.NoError(t, err)
	}

	items, meta, err := svc.List(ctx, domain.ListRequest{Query: pagination.Query{Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, int64(3), meta.Total)
	assert.Equal(t, "Bahrain", items[0].Name)

	items, meta, err = svc.List(ctx, domain.ListRequest{Query: pagination.Query{SearchTerm: "kuw"}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), meta.Total)
	assert.Equal(t, "KW", items[0].ISOCode)
}
