package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	citydomain "github.com/smallbiznis/eventory/internal/city/domain"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/internal/warehouse/domain"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var sortColumns = map[string]string{
	"name":       "name",
	"code":       "code",
	"created_at": "created_at",
}

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    domain.Repository
	CitySvc citydomain.Service
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	citySvc citydomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("warehouse.service"),
		repo:    p.Repo,
		citySvc: p.CitySvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Warehouse, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, domain.ErrInvalidCode
	}
	countryID, cityID, err := s.requireLocation(ctx, req.CountryID, req.CityID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	warehouse := &domain.Warehouse{
		ID:         uuid.New(),
		PlatformID: platformID,
		CountryID:  countryID,
		CityID:     cityID,
		Name:       name,
		Code:       code,
		Address:    optional(req.Address),
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, s.db, warehouse); err != nil {
		return nil, translateUnique(err)
	}
	return warehouse, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Warehouse, pagination.Meta, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, pagination.Meta{}, domain.ErrInvalidPlatform
	}

	filter := domain.ListFilter{IsActive: req.IsActive}
	if value := strings.TrimSpace(req.CountryID); value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, pagination.Meta{}, domain.ErrInvalidLocation
		}
		filter.CountryID = &id
	}
	if value := strings.TrimSpace(req.CityID); value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, pagination.Meta{}, domain.ErrInvalidLocation
		}
		filter.CityID = &id
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

func (s *Service) Get(ctx context.Context, id string) (*domain.Warehouse, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	warehouseID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	warehouse, err := s.repo.FindByID(ctx, s.db, platformID, warehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}
	return warehouse, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Warehouse, error) {
	warehouse, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CountryID != nil || req.CityID != nil {
		countryValue := warehouse.CountryID.String()
		if req.CountryID != nil {
			countryValue = *req.CountryID
		}
		cityValue := warehouse.CityID.String()
		if req.CityID != nil {
			cityValue = *req.CityID
		}
		countryID, cityID, err := s.requireLocation(ctx, countryValue, cityValue)
		if err != nil {
			return nil, err
		}
		warehouse.CountryID = countryID
		warehouse.CityID = cityID
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		warehouse.Name = name
	}
	if req.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.Code))
		if code == "" {
			return nil, domain.ErrInvalidCode
		}
		warehouse.Code = code
	}
	if req.Address != nil {
		warehouse.Address = optional(*req.Address)
	}
	if req.IsActive != nil {
		warehouse.IsActive = *req.IsActive
	}
	warehouse.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, warehouse); err != nil {
		return nil, translateUnique(err)
	}
	return warehouse, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidPlatform
	}
	warehouseID, err := parseID(id)
	if err != nil {
		return err
	}
	affected, err := s.repo.SoftDelete(ctx, s.db, platformID, warehouseID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) requireLocation(ctx context.Context, countryValue, cityValue string) (uuid.UUID, uuid.UUID, error) {
	countryID, err := uuid.Parse(strings.TrimSpace(countryValue))
	if err != nil {
		return uuid.Nil, uuid.Nil, domain.ErrInvalidLocation
	}
	cityID, err := uuid.Parse(strings.TrimSpace(cityValue))
	if err != nil {
		return uuid.Nil, uuid.Nil, domain.ErrInvalidLocation
	}
	if err := s.citySvc.BelongsTo(ctx, cityID.String(), countryID.String()); err != nil {
		if errors.Is(err, citydomain.ErrNotFound) || errors.Is(err, citydomain.ErrInvalidID) {
			return uuid.Nil, uuid.Nil, domain.ErrInvalidLocation
		}
		return uuid.Nil, uuid.Nil, err
	}
	return countryID, cityID, nil
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
		"warehouses_platform_code_key": domain.ErrCodeExists,
	}, domain.ErrCodeExists)
}
