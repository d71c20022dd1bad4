package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/city/domain"
	"github.com/smallbiznis/eventory/internal/city/repository"
	countrydomain "github.com/smallbiznis/eventory/internal/country/domain"
	countryrepo "github.com/smallbiznis/eventory/internal/country/repository"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, context.Context, *gorm.DB, uuid.UUID) {
	t.Helper()
	conn, err := db.NewTest(&countrydomain.Country{}, &domain.City{})
	require.NoError(t, err)

	platformID := uuid.New()
	now := time.Now().UTC()
	country := countrydomain.Country{ID: uuid.New(), PlatformID: platformID, Name: "UAE", ISOCode: "AE", IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, conn.Create(&country).Error)

	svc := New(Params{DB: conn, Log: zaptest.NewLogger(t), Repo: repository.Provide(), CountryRepo: countryrepo.Provide()})
	return svc, platformctx.WithPlatformID(context.Background(), platformID), conn, country.ID
}

func TestCreateRequiresCountry(t *testing.T) {
	svc, ctx, _, countryID := setup(t)

	_, err := svc.Create(ctx, domain.CreateRequest{CountryID: uuid.NewString(), Name: "Dubai"})
	assert.ErrorIs(t, err, domain.ErrInvalidCountry)

	city, err := svc.Create(ctx, domain.CreateRequest{CountryID: countryID.String(), Name: "Dubai"})
	require.NoError(t, err)
	assert.Equal(t, countryID, city.CountryID)

	_, err = svc.Create(ctx, domain.CreateRequest{CountryID: countryID.String(), Name: "Dubai"})
	assert.ErrorIs(t, err, domain.ErrNameExists)
}

func TestListFiltersByCountry(t *testing.T) {
	svc, ctx, conn, countryID := setup(t)
	platformID, _ := platformctx.PlatformIDFromContext(ctx)

	now := time.Now().UTC()
	oman := countrydomain.Country{ID: uuid.New(), PlatformID: platformID, Name: "Oman", ISOCode: "OM", IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, conn.Create(&oman).Error)

	_, err := svc.Create(ctx, domain.CreateRequest{CountryID: countryID.String(), Name: "Dubai"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{CountryID: countryID.String(), Name: "Abu Dhabi"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{CountryID: oman.ID.String(), Name: "Muscat"})
	require.NoError(t, err)

	items, meta, err := svc.List(ctx, domain.ListRequest{CountryID: countryID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), meta.Total)
	assert.Equal(t, "Abu Dhabi", items[0].Name)
}

func TestBelongsTo(t *testing.T) {
	svc, ctx, _, countryID := setup(t)

	city, err := svc.Create(ctx, domain.CreateRequest{CountryID: countryID.String(), Name: "Sharjah"})
	require.NoError(t, err)

	assert.NoError(t, svc.BelongsTo(ctx, city.ID.String(), countryID.String()))
	assert.ErrorIs(t, svc.BelongsTo(ctx, city.ID.String(), uuid.NewString()), domain.ErrCityNotInCountry)

	_, err = svc.Deactivate(ctx, city.ID.String())
	require.NoError(t, err)
	assert.ErrorIs(t, svc.BelongsTo(ctx, city.ID.String(), countryID.String()), domain.ErrNotFound)
}

func TestDeleteTwice(t *testing.T) {
	svc, ctx, _, countryID := setup(t)

	city, err := svc.Create(ctx, domain.CreateRequest{CountryID: countryID.String(), Name: "Ajman"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, city.ID.String()))
	assert.ErrorIs(t, svc.Delete(ctx, city.ID.String()), domain.ErrNotFound)
}
