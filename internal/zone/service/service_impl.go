package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	companydomain "github.com/smallbiznis/eventory/internal/company/domain"
	"github.com/smallbiznis/eventory/internal/platformctx"
	warehousedomain "github.com/smallbiznis/eventory/internal/warehouse/domain"
	"github.com/smallbiznis/eventory/internal/zone/domain"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var sortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Repo          domain.Repository
	WarehouseRepo warehousedomain.Repository
	CompanyRepo   companydomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	repo          domain.Repository
	warehouseRepo warehousedomain.Repository
	companyRepo   companydomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("zone.service"),
		repo:          p.Repo,
		warehouseRepo: p.WarehouseRepo,
		companyRepo:   p.CompanyRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Zone, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	warehouseID, err := uuid.Parse(strings.TrimSpace(req.WarehouseID))
	if err != nil {
		return nil, domain.ErrInvalidWarehouse
	}
	warehouse, err := s.warehouseRepo.FindByID(ctx, s.db, platformID, warehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrInvalidWarehouse
	}
	companyID, err := s.optionalCompany(ctx, platformID, req.CompanyID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	zone := &domain.Zone{
		ID:          uuid.New(),
		PlatformID:  platformID,
		WarehouseID: warehouseID,
		CompanyID:   companyID,
		Name:        name,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, zone); err != nil {
		return nil, translateUnique(err)
	}
	return zone, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Zone, pagination.Meta, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, pagination.Meta{}, domain.ErrInvalidPlatform
	}

	filter := domain.ListFilter{IsActive: req.IsActive}
	if value := strings.TrimSpace(req.WarehouseID); value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, pagination.Meta{}, domain.ErrInvalidWarehouse
		}
		filter.WarehouseID = &id
	}
	if value := strings.TrimSpace(req.CompanyID); value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, pagination.Meta{}, domain.ErrInvalidCompany
		}
		filter.CompanyID = &id
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

func (s *Service) Get(ctx context.Context, id string) (*domain.Zone, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	zoneID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	zone, err := s.repo.FindByID(ctx, s.db, platformID, zoneID)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, domain.ErrNotFound
	}
	return zone, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Zone, error) {
	zone, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		zone.Name = name
	}
	if req.CompanyID != nil {
		companyID, err := s.optionalCompany(ctx, zone.PlatformID, *req.CompanyID)
		if err != nil {
			return nil, err
		}
		zone.CompanyID = companyID
	}
	if req.IsActive != nil {
		zone.IsActive = *req.IsActive
	}
	zone.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, zone); err != nil {
		return nil, translateUnique(err)
	}
	return zone, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidPlatform
	}
	zoneID, err := parseID(id)
	if err != nil {
		return err
	}
	affected, err := s.repo.SoftDelete(ctx, s.db, platformID, zoneID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) optionalCompany(ctx context.Context, platformID uuid.UUID, value string) (*uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	companyID, err := uuid.Parse(value)
	if err != nil {
		return nil, domain.ErrInvalidCompany
	}
	company, err := s.companyRepo.FindByID(ctx, s.db, platformID, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrInvalidCompany
	}
	return &companyID, nil
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
		"zones_platform_warehouse_name_key": domain.ErrNameExists,
	}, domain.ErrNameExists)
}
