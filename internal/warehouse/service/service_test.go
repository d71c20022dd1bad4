package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	citydomain "github.com/smallbiznis/eventory/internal/city/domain"
	cityrepo "github.com/smallbiznis/eventory/internal/city/repository"
	cityservice "github.com/smallbiznis/eventory/internal/city/service"
	countrydomain "github.com/smallbiznis/eventory/internal/country/domain"
	countryrepo "github.com/smallbiznis/eventory/internal/country/repository"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/internal/warehouse/domain"
	"github.com/smallbiznis/eventory/internal/warehouse/repository"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestWarehouseLocationMustMatch(t *testing.T) {
	conn, err := db.NewTest(&countrydomain.Country{}, &citydomain.City{}, &domain.Warehouse{})
	require.NoError(t, err)
	log := zaptest.NewLogger(t)

	platformID := uuid.New()
	ctx := platformctx.WithPlatformID(context.Background(), platformID)
	now := time.Now().UTC()

	uae := countrydomain.Country{ID: uuid.New(), PlatformID: platformID, Name: "UAE", ISOCode: "AE", IsActive: true, CreatedAt: now, UpdatedAt: now}
	oman := countrydomain.Country{ID: uuid.New(), PlatformID: platformID, Name: "Oman", ISOCode: "OM", IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, conn.Create(&[]countrydomain.Country{uae, oman}).Error)
	dubai := citydomain.City{ID: uuid.New(), PlatformID: platformID, CountryID: uae.ID, Name: "Dubai", IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, conn.Create(&dubai).Error)

	cities := cityservice.New(cityservice.Params{DB: conn, Log: log, Repo: cityrepo.Provide(), CountryRepo: countryrepo.Provide()})
	svc := New(Params{DB: conn, Log: log, Repo: repository.Provide(), CitySvc: cities})

	_, err = svc.Create(ctx, domain.CreateRequest{CountryID: oman.ID.String(), CityID: dubai.ID.String(), Name: "Wrong", Code: "wr-1"})
	assert.ErrorIs(t, err, citydomain.ErrCityNotInCountry)

	_, err = svc.Create(ctx, domain.CreateRequest{CountryID: uae.ID.String(), CityID: uuid.NewString(), Name: "Ghost", Code: "gh-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidLocation)

	wh, err := svc.Create(ctx, domain.CreateRequest{CountryID: uae.ID.String(), CityID: dubai.ID.String(), Name: "Jebel Ali", Code: "dxb-01"})
	require.NoError(t, err)
	assert.Equal(t, "DXB-01", wh.Code)

	_, err = svc.Create(ctx, domain.CreateRequest{CountryID: uae.ID.String(), CityID: dubai.ID.String(), Name: "Dup", Code: "DXB-01"})
	assert.ErrorIs(t, err, domain.ErrCodeExists)

	items, meta, err := svc.List(ctx, domain.ListRequest{CityID: dubai.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), meta.Total)
	assert.Equal(t, wh.ID, items[0].ID)
}
