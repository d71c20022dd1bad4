package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	assetdomain "github.com/smallbiznis/eventory/internal/asset/domain"
	assetrepo "github.com/smallbiznis/eventory/internal/asset/repository"
	assetservice "github.com/smallbiznis/eventory/internal/asset/service"
	branddomain "github.com/smallbiznis/eventory/internal/brand/domain"
	brandrepo "github.com/smallbiznis/eventory/internal/brand/repository"
	citydomain "github.com/smallbiznis/eventory/internal/city/domain"
	cityrepo "github.com/smallbiznis/eventory/internal/city/repository"
	cityservice "github.com/smallbiznis/eventory/internal/city/service"
	companydomain "github.com/smallbiznis/eventory/internal/company/domain"
	companyrepo "github.com/smallbiznis/eventory/internal/company/repository"
	"github.com/smallbiznis/eventory/internal/config"
	countrydomain "github.com/smallbiznis/eventory/internal/country/domain"
	countryrepo "github.com/smallbiznis/eventory/internal/country/repository"
	notificationdomain "github.com/smallbiznis/eventory/internal/notification/domain"
	"github.com/smallbiznis/eventory/internal/order/domain"
	"github.com/smallbiznis/eventory/internal/order/repository"
	platformdomain "github.com/smallbiznis/eventory/internal/platform/domain"
	platformrepo "github.com/smallbiznis/eventory/internal/platform/repository"
	"github.com/smallbiznis/eventory/internal/platformctx"
	pricingtierdomain "github.com/smallbiznis/eventory/internal/pricingtier/domain"
	pricingtierrepo "github.com/smallbiznis/eventory/internal/pricingtier/repository"
	"github.com/smallbiznis/eventory/internal/providers/storage"
	warehouserepo "github.com/smallbiznis/eventory/internal/warehouse/repository"
	zonerepo "github.com/smallbiznis/eventory/internal/zone/repository"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type capturedNotifications struct {
	notificationdomain.Service
	mu     sync.Mutex
	events []notificationdomain.Event
}

func (c *capturedNotifications) Notify(ctx context.Context, event notificationdomain.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

type fixture struct {
	t          *testing.T
	conn       *gorm.DB
	svc        domain.Service
	notified   *capturedNotifications
	platformID uuid.UUID
	company    companydomain.Company
	other      companydomain.Company
	countryID  uuid.UUID
	cityID     uuid.UUID
	quietCity  uuid.UUID
	chair      assetdomain.Asset
	table      assetdomain.Asset
	foreign    assetdomain.Asset
	staff      context.Context
	client     context.Context
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func setup(t *testing.T) *fixture {
	t.Helper()
	conn, err := db.NewTest(
		&platformdomain.Platform{},
		&companydomain.Company{},
		&branddomain.Brand{},
		&countrydomain.Country{},
		&citydomain.City{},
		&pricingtierdomain.PricingTier{},
		&assetdomain.Asset{},
		&assetdomain.Collection{},
		&assetdomain.CollectionItem{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.StatusHistory{},
	)
	require.NoError(t, err)
	log := zaptest.NewLogger(t)
	now := time.Now().UTC()

	f := &fixture{t: t, conn: conn, notified: &capturedNotifications{}, platformID: uuid.New()}
	margin := dec("20")
	platform := platformdomain.Platform{ID: f.platformID, Name: "Eventory", Slug: "eventory", Currency: "AED", DefaultMarginPercent: &margin, IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, conn.Create(&platform).Error)

	f.company = companydomain.Company{ID: uuid.New(), PlatformID: f.platformID, Name: "Acme", Slug: "acme", IsActive: true, CreatedAt: now, UpdatedAt: now}
	f.other = companydomain.Company{ID: uuid.New(), PlatformID: f.platformID, Name: "Globex", Slug: "globex", IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, conn.Create(&f.company).Error)
	require.NoError(t, conn.Create(&f.other).Error)

	country := countrydomain.Country{ID: uuid.New(), PlatformID: f.platformID, Name: "UAE", ISOCode: "AE", IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, conn.Create(&country).Error)
	cities := []citydomain.City{
		{ID: uuid.New(), PlatformID: f.platformID, CountryID: country.ID, Name: "Dubai", IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), PlatformID: f.platformID, CountryID: country.ID, Name: "Fujairah", IsActive: true, CreatedAt: now, UpdatedAt: now},
	}
	require.NoError(t, conn.Create(&cities).Error)
	f.countryID, f.cityID, f.quietCity = country.ID, cities[0].ID, cities[1].ID

	ten := dec("10")
	tiers := []pricingtierdomain.PricingTier{
		{ID: uuid.New(), PlatformID: f.platformID, CountryID: country.ID, CityID: f.cityID, VolumeMax: &ten, BasePrice: dec("1000"), Currency: "AED", IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), PlatformID: f.platformID, CountryID: country.ID, CityID: f.cityID, VolumeMin: &ten, BasePrice: dec("2000"), Currency: "AED", IsActive: true, CreatedAt: now, UpdatedAt: now},
	}
	require.NoError(t, conn.Create(&tiers).Error)

	f.chair = f.insertAsset(f.company.ID, "CHAIR", "0.5", 100)
	f.table = f.insertAsset(f.company.ID, "TABLE", "2", 10)
	f.foreign = f.insertAsset(f.other.ID, "FOREIGN", "1", 10)

	assetSvc := assetservice.New(assetservice.Params{
		DB:            conn,
		Log:           log,
		Repo:          assetrepo.Provide(),
		CompanyRepo:   companyrepo.Provide(),
		BrandRepo:     brandrepo.Provide(),
		WarehouseRepo: warehouserepo.Provide(),
		ZoneRepo:      zonerepo.Provide(),
		Storage:       &storage.NoOpProvider{},
	})
	collectionSvc := assetservice.NewCollectionService(assetservice.CollectionParams{
		DB:          conn,
		Log:         log,
		Repo:        assetrepo.ProvideCollections(),
		AssetRepo:   assetrepo.Provide(),
		CompanyRepo: companyrepo.Provide(),
	})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	f.svc = New(Params{
		DB:              conn,
		Log:             log,
		PricingCfg:      config.NewStaticPricingConfigHolder(config.DefaultPricingConfig()),
		Node:            node,
		Repo:            repository.Provide(),
		AssetRepo:       assetrepo.Provide(),
		AssetSvc:        assetSvc,
		CollectionSvc:   collectionSvc,
		CompanyRepo:     companyrepo.Provide(),
		BrandRepo:       brandrepo.Provide(),
		PlatformRepo:    platformrepo.Provide(),
		CitySvc:         cityservice.New(cityservice.Params{DB: conn, Log: log, Repo: cityrepo.Provide(), CountryRepo: countryrepo.Provide()}),
		TierRepo:        pricingtierrepo.Provide(),
		NotificationSvc: f.notified,
	})

	base := platformctx.WithPlatformID(context.Background(), f.platformID)
	f.staff = platformctx.WithActor(base, platformctx.Actor{UserID: uuid.New(), Role: platformctx.RoleLogistics})
	f.client = platformctx.WithActor(base, platformctx.Actor{UserID: uuid.New(), Role: platformctx.RoleClient, CompanyID: &f.company.ID})
	return f
}

func (f *fixture) insertAsset(companyID uuid.UUID, sku, volume string, qty int) assetdomain.Asset {
	now := time.Now().UTC()
	asset := assetdomain.Asset{
		ID:                uuid.New(),
		PlatformID:        f.platformID,
		CompanyID:         companyID,
		WarehouseID:       uuid.New(),
		Name:              "Item " + sku,
		SKU:               sku,
		Category:          "Furniture",
		UnitVolume:        dec(volume),
		UnitWeight:        decimal.Zero,
		TotalQuantity:     qty,
		AvailableQuantity: qty,
		Condition:         assetdomain.ConditionGood,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(f.t, f.conn.Create(&asset).Error)
	return asset
}

func (f *fixture) request(items ...domain.ItemInput) domain.CreateRequest {
	start := time.Date(2026, 12, 1, 9, 0, 0, 0, time.UTC)
	return domain.CreateRequest{
		CompanyID:  f.company.ID.String(),
		EventName:  "Launch Party",
		EventStart: start,
		EventEnd:   start.Add(48 * time.Hour),
		VenueName:  "Expo Hall 4",
		CountryID:  f.countryID.String(),
		CityID:     f.cityID.String(),
		Items:      items,
	}
}

func (f *fixture) item(asset assetdomain.Asset, qty int) domain.ItemInput {
	return domain.ItemInput{AssetID: asset.ID.String(), Quantity: qty}
}

func (f *fixture) available(asset assetdomain.Asset) int {
	var current assetdomain.Asset
	require.NoError(f.t, f.conn.First(&current, "id = ?", asset.ID).Error)
	return current.AvailableQuantity
}

func (f *fixture) move(ctx context.Context, order *domain.Order, statuses ...string) *domain.Order {
	f.t.Helper()
	for _, status := range statuses {
		var err error
		order, err = f.svc.Transition(ctx, order.ID.String(), domain.TransitionRequest{Status: status})
		require.NoError(f.t, err, status)
	}
	return order
}

func TestCreateExpandsCollectionsAndSubmitPricesFromTier(t *testing.T) {
	f := setup(t)
	now := time.Now().UTC()
	collection := assetdomain.Collection{ID: uuid.New(), PlatformID: f.platformID, CompanyID: f.company.ID, Name: "Banquet", IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.conn.Create(&collection).Error)
	require.NoError(t, f.conn.Create(&[]assetdomain.CollectionItem{
		{CollectionID: collection.ID, AssetID: f.chair.ID, PlatformID: f.platformID, Quantity: 2},
		{CollectionID: collection.ID, AssetID: f.table.ID, PlatformID: f.platformID, Quantity: 1},
	}).Error)

	req := f.request(f.item(f.chair, 2))
	req.CollectionIDs = []string{collection.ID.String()}
	order, err := f.svc.Create(f.staff, req)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, order.Status)
	assert.Regexp(t, `^ORD-\d+$`, order.OrderNumber)
	require.Len(t, order.Items, 2)
	assert.True(t, order.TotalVolume.Equal(dec("4")), order.TotalVolume.String())
	assert.Nil(t, order.FinalPrice)

	submitted, err := f.svc.Submit(f.staff, order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.FinalPrice)
	assert.Equal(t, "1000.00", submitted.BasePrice.StringFixed(2))
	assert.Equal(t, "20.00", submitted.MarginPercent.StringFixed(2))
	assert.Equal(t, "200.00", submitted.MarginAmount.StringFixed(2))
	assert.Equal(t, "1200.00", submitted.FinalPrice.StringFixed(2))
	assert.NotNil(t, submitted.SubmittedAt)

	history, err := f.svc.History(f.staff, order.ID.String())
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Nil(t, history[0].FromStatus)
	assert.Equal(t, domain.StatusSubmitted, history[1].ToStatus)

	require.Len(t, f.notified.events, 1)
	event := f.notified.events[0]
	assert.Equal(t, notificationdomain.TypeOrderStatusChanged, event.Type)
	assert.Equal(t, domain.StatusSubmitted, event.Data["to_status"])
	assert.Equal(t, "1200.00", event.Data["final_price"])
	assert.True(t, event.NotifyCompany)
}

func TestCompanyMarginOverridesPlatformDefault(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.conn.Model(&companydomain.Company{}).Where("id = ?", f.company.ID).Update("margin_percent", dec("10")).Error)

	order, err := f.svc.Create(f.staff, f.request(f.item(f.table, 1)))
	require.NoError(t, err)
	order, err = f.svc.Submit(f.staff, order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "1100.00", order.FinalPrice.StringFixed(2))
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)

	req := f.request(f.item(f.foreign, 1))
	_, err := f.svc.Create(f.staff, req)
	assert.ErrorIs(t, err, domain.ErrInvalidAsset)

	req = f.request()
	req.EventEnd = req.EventStart.Add(-time.Hour)
	_, err = f.svc.Create(f.staff, req)
	assert.ErrorIs(t, err, domain.ErrInvalidEventDates)

	req = f.request()
	req.CountryID = uuid.NewString()
	_, err = f.svc.Create(f.staff, req)
	assert.ErrorIs(t, err, citydomain.ErrCityNotInCountry)

	req = f.request()
	req.CompanyID = ""
	_, err = f.svc.Create(f.staff, req)
	assert.ErrorIs(t, err, domain.ErrInvalidCompany)

	_, err = f.svc.Create(platformctx.WithPlatformID(context.Background(), f.platformID), f.request())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestClientIsPinnedToOwnCompany(t *testing.T) {
	f := setup(t)

	req := f.request(f.item(f.chair, 1))
	req.CompanyID = f.other.ID.String()
	order, err := f.svc.Create(f.client, req)
	require.NoError(t, err)
	assert.Equal(t, f.company.ID, order.CompanyID)

	otherReq := f.request(f.item(f.foreign, 1))
	otherReq.CompanyID = f.other.ID.String()
	foreignOrder, err := f.svc.Create(f.staff, otherReq)
	require.NoError(t, err)

	_, err = f.svc.Get(f.client, foreignOrder.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	items, meta, err := f.svc.List(f.client, domain.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), meta.Total)
	assert.Equal(t, order.ID, items[0].ID)

	f.move(f.client, order, domain.StatusSubmitted)
	_, err = f.svc.Transition(f.client, order.ID.String(), domain.TransitionRequest{Status: domain.StatusPricingReview})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.svc.OverridePricing(f.client, order.ID.String(), domain.OverridePricingRequest{BasePrice: decPtr("1")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestItemChangesRepriceInsideReview(t *testing.T) {
	f := setup(t)
	order, err := f.svc.Create(f.staff, f.request(f.item(f.chair, 4)))
	require.NoError(t, err)
	order = f.move(f.staff, order, domain.StatusSubmitted, domain.StatusPricingReview)
	assert.Equal(t, "1000.00", order.BasePrice.StringFixed(2))

	order, err = f.svc.AddItem(f.staff, order.ID.String(), f.item(f.table, 4))
	require.NoError(t, err)
	assert.True(t, order.TotalVolume.Equal(dec("10")))
	assert.Equal(t, "2000.00", order.BasePrice.StringFixed(2), "volume 10 falls in the upper band")

	_, err = f.svc.AddItem(f.staff, order.ID.String(), f.item(f.table, 1))
	assert.ErrorIs(t, err, domain.ErrItemExists)

	var chairLine, tableLine domain.OrderItem
	for _, item := range order.Items {
		switch item.AssetID {
		case f.chair.ID:
			chairLine = item
		case f.table.ID:
			tableLine = item
		}
	}

	order, err = f.svc.AdjustItem(f.staff, order.ID.String(), chairLine.ID.String(), domain.AdjustItemRequest{Quantity: 0})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.True(t, order.TotalVolume.Equal(dec("8")))
	assert.Equal(t, "1000.00", order.BasePrice.StringFixed(2))

	_, err = f.svc.RemoveItem(f.staff, order.ID.String(), tableLine.ID.String())
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)

	history, err := f.svc.History(f.staff, order.ID.String())
	require.NoError(t, err)
	assert.Len(t, history, 5)
}

func TestItemsLockedAfterQuote(t *testing.T) {
	f := setup(t)
	order, err := f.svc.Create(f.staff, f.request(f.item(f.chair, 1)))
	require.NoError(t, err)
	order = f.move(f.staff, order, domain.StatusSubmitted, domain.StatusPricingReview, domain.StatusQuoted)

	_, err = f.svc.AddItem(f.staff, order.ID.String(), f.item(f.table, 1))
	assert.ErrorIs(t, err, domain.ErrNotEditable)

	name := "Renamed"
	_, err = f.svc.Update(f.staff, order.ID.String(), domain.UpdateRequest{EventName: &name})
	assert.ErrorIs(t, err, domain.ErrNotEditable)
}

func TestNoTierRequiresOverrideBeforeQuote(t *testing.T) {
	f := setup(t)
	req := f.request(f.item(f.chair, 2))
	req.CityID = f.quietCity.String()
	order, err := f.svc.Create(f.staff, req)
	require.NoError(t, err)

	order = f.move(f.staff, order, domain.StatusSubmitted, domain.StatusPricingReview)
	assert.Nil(t, order.FinalPrice)
	require.NotNil(t, order.PricingNote)
	assert.Equal(t, noTierNote, *order.PricingNote)

	_, err = f.svc.Transition(f.staff, order.ID.String(), domain.TransitionRequest{Status: domain.StatusQuoted})
	assert.ErrorIs(t, err, domain.ErrPriceRequired)

	_, err = f.svc.OverridePricing(f.staff, order.ID.String(), domain.OverridePricingRequest{BasePrice: decPtr("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidBasePrice)

	_, err = f.svc.OverridePricing(f.staff, order.ID.String(), domain.OverridePricingRequest{Note: "no price"})
	assert.ErrorIs(t, err, domain.ErrInvalidBasePrice)

	order, err = f.svc.OverridePricing(f.staff, order.ID.String(), domain.OverridePricingRequest{BasePrice: decPtr("500"), Note: "remote site"})
	require.NoError(t, err)
	assert.True(t, order.PricingOverridden)
	assert.Equal(t, "600.00", order.FinalPrice.StringFixed(2))
	assert.Equal(t, "remote site", *order.PricingNote)

	order = f.move(f.staff, order, domain.StatusQuoted)
	assert.NotNil(t, order.QuotedAt)
}

func TestConfirmReservesStockAndCancelReleases(t *testing.T) {
	f := setup(t)
	order, err := f.svc.Create(f.staff, f.request(f.item(f.table, 6)))
	require.NoError(t, err)
	order = f.move(f.staff, order, domain.StatusSubmitted, domain.StatusPricingReview, domain.StatusQuoted)

	rival, err := f.svc.Create(f.staff, f.request(f.item(f.table, 5)))
	require.NoError(t, err)
	rival = f.move(f.staff, rival, domain.StatusSubmitted, domain.StatusPricingReview, domain.StatusQuoted)

	order = f.move(f.client, order, domain.StatusConfirmed)
	assert.NotNil(t, order.ConfirmedAt)
	assert.Equal(t, 4, f.available(f.table))

	_, err = f.svc.Transition(f.client, rival.ID.String(), domain.TransitionRequest{Status: domain.StatusConfirmed})
	assert.ErrorIs(t, err, assetdomain.ErrInsufficientStock)
	reloaded, err := f.svc.Get(f.staff, rival.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQuoted, reloaded.Status)

	_, err = f.svc.Transition(f.client, order.ID.String(), domain.TransitionRequest{Status: domain.StatusCancelled})
	assert.ErrorIs(t, err, domain.ErrForbidden, "clients cannot cancel a confirmed order")

	f.move(f.staff, order, domain.StatusCancelled)
	assert.Equal(t, 10, f.available(f.table))
}

func TestFullLifecycleReturnsStock(t *testing.T) {
	f := setup(t)
	order, err := f.svc.Create(f.staff, f.request(f.item(f.chair, 30)))
	require.NoError(t, err)
	order = f.move(f.staff, order,
		domain.StatusSubmitted,
		domain.StatusPricingReview,
		domain.StatusQuoted,
		domain.StatusConfirmed,
		domain.StatusInPreparation,
		domain.StatusDispatched,
		domain.StatusDelivered,
	)
	assert.Equal(t, 70, f.available(f.chair))

	order = f.move(f.staff, order, domain.StatusReturned, domain.StatusClosed)
	assert.Equal(t, 100, f.available(f.chair))
	assert.NotNil(t, order.ClosedAt)

	_, err = f.svc.Transition(f.staff, order.ID.String(), domain.TransitionRequest{Status: domain.StatusDraft})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Len(t, f.notified.events, 9)
}

func TestGuardedUpdateDetectsStaleStatus(t *testing.T) {
	f := setup(t)
	order, err := f.svc.Create(f.staff, f.request(f.item(f.chair, 1)))
	require.NoError(t, err)

	order.Status = domain.StatusCancelled
	updated, err := repository.Provide().UpdateGuarded(f.staff, f.conn, order, domain.StatusSubmitted)
	require.NoError(t, err)
	assert.False(t, updated)

	updated, err = repository.Provide().UpdateGuarded(f.staff, f.conn, order, domain.StatusDraft)
	require.NoError(t, err)
	assert.True(t, updated)
}
