package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	companydomain "github.com/smallbiznis/eventory/internal/company/domain"
	companyrepo "github.com/smallbiznis/eventory/internal/company/repository"
	"github.com/smallbiznis/eventory/internal/platformctx"
	warehousedomain "github.com/smallbiznis/eventory/internal/warehouse/domain"
	warehouserepo "github.com/smallbiznis/eventory/internal/warehouse/repository"
	"github.com/smallbiznis/eventory/internal/zone/domain"
	"github.com/smallbiznis/eventory/internal/zone/repository"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestZoneLifecycle(t *testing.T) {
	conn, err := db.NewTest(&companydomain.Company{}, &warehousedomain.Warehouse{}, &domain.Zone{})
	require.NoError(t, err)
	svc := New(Params{
		DB:            conn,
		Log:           zaptest.NewLogger(t),
		Repo:          repository.Provide(),
		WarehouseRepo: warehouserepo.Provide(),
		CompanyRepo:   companyrepo.Provide(),
	})

	platformID := uuid.New()
	ctx := platformctx.WithPlatformID(context.Background(), platformID)
	now := time.Now().UTC()
	wh := warehousedomain.Warehouse{ID: uuid.New(), PlatformID: platformID, CountryID: uuid.New(), CityID: uuid.New(), Name: "Main", Code: "MAIN", IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, conn.Create(&wh).Error)
	company := companydomain.Company{ID: uuid.New(), PlatformID: platformID, Name: "Acme", Slug: "acme", IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, conn.Create(&company).Error)

	_, err = svc.Create(ctx, domain.CreateRequest{WarehouseID: uuid.NewString(), Name: "A1"})
	assert.ErrorIs(t, err, domain.ErrInvalidWarehouse)

	zone, err := svc.Create(ctx, domain.CreateRequest{WarehouseID: wh.ID.String(), CompanyID: company.ID.String(), Name: "A1"})
	require.NoError(t, err)
	require.NotNil(t, zone.CompanyID)

	_, err = svc.Create(ctx, domain.CreateRequest{WarehouseID: wh.ID.String(), Name: "A1"})
	assert.ErrorIs(t, err, domain.ErrNameExists)

	release := ""
	updated, err := svc.Update(ctx, zone.ID.String(), domain.UpdateRequest{CompanyID: &release})
	require.NoError(t, err)
	assert.Nil(t, updated.CompanyID)

	items, meta, err := svc.List(ctx, domain.ListRequest{WarehouseID: wh.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), meta.Total)
	assert.Nil(t, items[0].CompanyID)

	require.NoError(t, svc.Delete(ctx, zone.ID.String()))
	assert.ErrorIs(t, svc.Delete(ctx, zone.ID.String()), domain.ErrNotFound)
}
