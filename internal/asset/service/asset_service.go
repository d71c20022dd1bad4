package service

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/eventory/internal/asset/domain"
	branddomain "github.com/smallbiznis/eventory/internal/brand/domain"
	companydomain "github.com/smallbiznis/eventory/internal/company/domain"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/internal/providers/storage"
	warehousedomain "github.com/smallbiznis/eventory/internal/warehouse/domain"
	zonedomain "github.com/smallbiznis/eventory/internal/zone/domain"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var sortColumns = map[string]string{
	"name":               "name",
	"sku":                "sku",
	"category":           "category",
	"available_quantity": "available_quantity",
	"created_at":         "created_at",
}

var imageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

const maxImageSize = 5 << 20

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Repo          domain.Repository
	CompanyRepo   companydomain.Repository
	BrandRepo     branddomain.Repository
	WarehouseRepo warehousedomain.Repository
	ZoneRepo      zonedomain.Repository
	Storage       storage.Provider
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	repo          domain.Repository
	companyRepo   companydomain.Repository
	brandRepo     branddomain.Repository
	warehouseRepo warehousedomain.Repository
	zoneRepo      zonedomain.Repository
	storage       storage.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("asset.service"),
		repo:          p.Repo,
		companyRepo:   p.CompanyRepo,
		brandRepo:     p.BrandRepo,
		warehouseRepo: p.WarehouseRepo,
		zoneRepo:      p.ZoneRepo,
		storage:       p.Storage,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Asset, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		return nil, domain.ErrInvalidSKU
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return nil, domain.ErrInvalidCategory
	}
	if !req.UnitVolume.IsPositive() {
		return nil, domain.ErrInvalidVolume
	}
	weight := decimal.Zero
	if req.UnitWeight != nil {
		if req.UnitWeight.IsNegative() {
			return nil, domain.ErrInvalidWeight
		}
		weight = *req.UnitWeight
	}
	if req.Quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	condition := domain.ConditionGood
	if value := strings.TrimSpace(req.Condition); value != "" {
		if !domain.ValidCondition(value) {
			return nil, domain.ErrInvalidCondition
		}
		condition = value
	}

	companyID, err := s.requireCompany(ctx, platformID, req.CompanyID)
	if err != nil {
		return nil, err
	}
	brandID, err := s.optionalBrand(ctx, platformID, companyID, req.BrandID)
	if err != nil {
		return nil, err
	}
	warehouseID, err := s.requireWarehouse(ctx, platformID, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	zoneID, err := s.optionalZone(ctx, platformID, companyID, warehouseID, req.ZoneID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	asset := &domain.Asset{
		ID:                uuid.New(),
		PlatformID:        platformID,
		CompanyID:         companyID,
		BrandID:           brandID,
		WarehouseID:       warehouseID,
		ZoneID:            zoneID,
		Name:              name,
		SKU:               sku,
		Category:          category,
		Description:       optional(req.Description),
		UnitVolume:        req.UnitVolume.Round(3),
		UnitWeight:        weight.Round(3),
		TotalQuantity:     req.Quantity,
		AvailableQuantity: req.Quantity,
		Condition:         condition,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Insert(ctx, s.db, asset); err != nil {
		return nil, translateUnique(err)
	}
	return asset, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Asset, pagination.Meta, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, pagination.Meta{}, domain.ErrInvalidPlatform
	}

	filter := domain.ListFilter{
		Category: strings.TrimSpace(req.Category),
		IsActive: req.IsActive,
	}
	var err error
	if filter.CompanyID, err = parseFilter(req.CompanyID, domain.ErrInvalidCompany); err != nil {
		return nil, pagination.Meta{}, err
	}
	if filter.BrandID, err = parseFilter(req.BrandID, domain.ErrInvalidBrand); err != nil {
		return nil, pagination.Meta{}, err
	}
	if filter.WarehouseID, err = parseFilter(req.WarehouseID, domain.ErrInvalidWarehouse); err != nil {
		return nil, pagination.Meta{}, err
	}
	if scope, scoped := platformctx.CompanyScope(ctx); scoped {
		if scope == nil || (filter.CompanyID != nil && *filter.CompanyID != *scope) {
			return []domain.Asset{}, pagination.Meta{Page: 1, Limit: pagination.DefaultLimit}, nil
		}
		filter.CompanyID = scope
	}

	query := req.Query.Normalize(sortColumns, "name")
	if req.Query.SortOrder == "" {
		query.SortOrder = "asc"
	}
	items, total, err := s.repo.List(ctx, s.db, platformID, filter, query)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return items, query.Meta(total), nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Asset, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	assetID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	asset, err := s.repo.FindByID(ctx, s.db, platformID, assetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, domain.ErrNotFound
	}
	if scope, scoped := platformctx.CompanyScope(ctx); scoped && (scope == nil || *scope != asset.CompanyID) {
		return nil, domain.ErrNotFound
	}
	return asset, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Asset, error) {
	asset, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		asset.Name = name
	}
	if req.SKU != nil {
		sku := strings.TrimSpace(*req.SKU)
		if sku == "" {
			return nil, domain.ErrInvalidSKU
		}
		asset.SKU = sku
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return nil, domain.ErrInvalidCategory
		}
		asset.Category = category
	}
	if req.Description != nil {
		asset.Description = optional(*req.Description)
	}
	if req.UnitVolume != nil {
		if !req.UnitVolume.IsPositive() {
			return nil, domain.ErrInvalidVolume
		}
		asset.UnitVolume = req.UnitVolume.Round(3)
	}
	if req.UnitWeight != nil {
		if req.UnitWeight.IsNegative() {
			return nil, domain.ErrInvalidWeight
		}
		asset.UnitWeight = req.UnitWeight.Round(3)
	}
	if req.Condition != nil {
		if !domain.ValidCondition(*req.Condition) {
			return nil, domain.ErrInvalidCondition
		}
		asset.Condition = *req.Condition
	}
	if req.BrandID != nil {
		brandID, err := s.optionalBrand(ctx, asset.PlatformID, asset.CompanyID, *req.BrandID)
		if err != nil {
			return nil, err
		}
		asset.BrandID = brandID
	}
	if req.WarehouseID != nil {
		warehouseID, err := s.requireWarehouse(ctx, asset.PlatformID, *req.WarehouseID)
		if err != nil {
			return nil, err
		}
		if warehouseID != asset.WarehouseID && req.ZoneID == nil {
			asset.ZoneID = nil
		}
		asset.WarehouseID = warehouseID
	}
	if req.ZoneID != nil {
		zoneID, err := s.optionalZone(ctx, asset.PlatformID, asset.CompanyID, asset.WarehouseID, *req.ZoneID)
		if err != nil {
			return nil, err
		}
		asset.ZoneID = zoneID
	}
	if req.IsActive != nil {
		asset.IsActive = *req.IsActive
	}

	if req.TotalQuantity != nil && *req.TotalQuantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		asset.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, tx, asset); err != nil {
			return err
		}
		if req.TotalQuantity == nil {
			return nil
		}
		resized, err := s.repo.Resize(ctx, tx, asset.PlatformID, asset.ID, *req.TotalQuantity)
		if err != nil {
			return err
		}
		if !resized {
			return domain.ErrQuantityBelowReserved
		}
		return nil
	})
	if err != nil {
		return nil, translateUnique(err)
	}
	return s.repo.FindByID(ctx, s.db, asset.PlatformID, asset.ID)
}

func (s *Service) Deactivate(ctx context.Context, id string) (*domain.Asset, error) {
	asset, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !asset.IsActive {
		return asset, nil
	}
	asset.IsActive = false
	asset.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *Service) UploadImage(ctx context.Context, id string, req domain.UploadImageRequest) (*domain.Asset, error) {
	if s.storage == nil || !s.storage.Enabled() {
		return nil, domain.ErrStorageDisabled
	}
	asset, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(req.Body) == 0 || len(req.Body) > maxImageSize {
		return nil, domain.ErrInvalidImage
	}
	contentType := http.DetectContentType(req.Body)
	ext, ok := imageTypes[contentType]
	if !ok {
		return nil, domain.ErrInvalidImage
	}

	key := storage.NewKey("assets", asset.PlatformID.String(), ext)
	object, err := s.storage.Put(ctx, key, contentType, req.Body)
	if err != nil {
		s.log.Error("failed to upload asset image",
			zap.String("asset_id", asset.ID.String()),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, err
	}
	if err := s.repo.UpdateImage(ctx, s.db, asset.PlatformID, asset.ID, object.URL); err != nil {
		return nil, err
	}
	asset.ImageURL = &object.URL
	return asset, nil
}

func (s *Service) Reserve(ctx context.Context, tx *gorm.DB, lines []domain.StockLine) error {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidPlatform
	}
	for _, line := range mergeLines(lines) {
		reserved, err := s.repo.Reserve(ctx, tx, platformID, line.AssetID, line.Quantity)
		if err != nil {
			return err
		}
		if !reserved {
			s.log.Info("stock reservation rejected",
				zap.String("asset_id", line.AssetID.String()),
				zap.Int("quantity", line.Quantity),
			)
			return domain.ErrInsufficientStock
		}
	}
	return nil
}

func (s *Service) Release(ctx context.Context, tx *gorm.DB, lines []domain.StockLine) error {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidPlatform
	}
	for _, line := range mergeLines(lines) {
		released, err := s.repo.Release(ctx, tx, platformID, line.AssetID, line.Quantity)
		if err != nil {
			return err
		}
		if !released {
			// Availability is already at the total; nothing left to return.
			s.log.Warn("stock release skipped",
				zap.String("asset_id", line.AssetID.String()),
				zap.Int("quantity", line.Quantity),
			)
		}
	}
	return nil
}

// mergeLines sums quantities per asset and orders them by id so concurrent
// reservations touch rows in the same order.
func mergeLines(lines []domain.StockLine) []domain.StockLine {
	totals := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		totals[line.AssetID] += line.Quantity
	}
	out := make([]domain.StockLine, 0, len(totals))
	for id, qty := range totals {
		out = append(out, domain.StockLine{AssetID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AssetID.String() < out[j].AssetID.String()
	})
	return out
}

func (s *Service) requireCompany(ctx context.Context, platformID uuid.UUID, value string) (uuid.UUID, error) {
	companyID, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, domain.ErrInvalidCompany
	}
	company, err := s.companyRepo.FindByID(ctx, s.db, platformID, companyID)
	if err != nil {
		return uuid.Nil, err
	}
	if company == nil {
		return uuid.Nil, domain.ErrInvalidCompany
	}
	return companyID, nil
}

func (s *Service) optionalBrand(ctx context.Context, platformID, companyID uuid.UUID, value string) (*uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	brandID, err := uuid.Parse(value)
	if err != nil {
		return nil, domain.ErrInvalidBrand
	}
	brand, err := s.brandRepo.FindByID(ctx, s.db, platformID, brandID)
	if err != nil {
		return nil, err
	}
	if brand == nil || brand.CompanyID != companyID {
		return nil, domain.ErrInvalidBrand
	}
	return &brandID, nil
}

func (s *Service) requireWarehouse(ctx context.Context, platformID uuid.UUID, value string) (uuid.UUID, error) {
	warehouseID, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, domain.ErrInvalidWarehouse
	}
	warehouse, err := s.warehouseRepo.FindByID(ctx, s.db, platformID, warehouseID)
	if err != nil {
		return uuid.Nil, err
	}
	if warehouse == nil {
		return uuid.Nil, domain.ErrInvalidWarehouse
	}
	return warehouseID, nil
}

// optionalZone accepts a zone of the given warehouse that is either shared
// or reserved for the asset's company.
func (s *Service) optionalZone(ctx context.Context, platformID, companyID, warehouseID uuid.UUID, value string) (*uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	zoneID, err := uuid.Parse(value)
	if err != nil {
		return nil, domain.ErrInvalidZone
	}
	zone, err := s.zoneRepo.FindByID(ctx, s.db, platformID, zoneID)
	if err != nil {
		return nil, err
	}
	if zone == nil || zone.WarehouseID != warehouseID {
		return nil, domain.ErrInvalidZone
	}
	if zone.CompanyID != nil && *zone.CompanyID != companyID {
		return nil, domain.ErrInvalidZone
	}
	return &zoneID, nil
}

func parseFilter(value string, invalid error) (*uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, invalid
	}
	return &id, nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func parseID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, domain.ErrInvalidID
	}
	return id, nil
}

func translateUnique(err error) error {
	return db.TranslateUnique(err, map[string]error{
		"assets_platform_sku_key": domain.ErrSKUExists,
	}, domain.ErrSKUExists)
}
