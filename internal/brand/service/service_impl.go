package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/brand/domain"
	companydomain "github.com/smallbiznis/eventory/internal/company/domain"
	"github.com/smallbiznis/eventory/internal/platformctx"
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

	DB          *gorm.DB
	Log         *zap.Logger
	Repo        domain.Repository
	CompanyRepo companydomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	repo        domain.Repository
	companyRepo companydomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("brand.service"),
		repo:        p.Repo,
		companyRepo: p.CompanyRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Brand, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	companyID, err := s.requireCompany(ctx, platformID, req.CompanyID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	brand := &domain.Brand{
		ID:         uuid.New(),
		PlatformID: platformID,
		CompanyID:  companyID,
		Name:       name,
		LogoURL:    optional(req.LogoURL),
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, s.db, brand); err != nil {
		return nil, translateUnique(err)
	}
	return brand, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Brand, pagination.Meta, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, pagination.Meta{}, domain.ErrInvalidPlatform
	}

	filter := domain.ListFilter{IsActive: req.IsActive}
	if value := strings.TrimSpace(req.CompanyID); value != "" {
		companyID, err := uuid.Parse(value)
		if err != nil {
			return nil, pagination.Meta{}, domain.ErrInvalidCompany
		}
		filter.CompanyID = &companyID
	}
	if scope, scoped := platformctx.CompanyScope(ctx); scoped {
		if scope == nil || (filter.CompanyID != nil && *filter.CompanyID != *scope) {
			return []domain.Brand{}, pagination.Meta{Page: 1, Limit: pagination.DefaultLimit}, nil
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

func (s *Service) Get(ctx context.Context, id string) (*domain.Brand, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	brandID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	brand, err := s.repo.FindByID(ctx, s.db, platformID, brandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, domain.ErrNotFound
	}
	if scope, scoped := platformctx.CompanyScope(ctx); scoped && (scope == nil || *scope != brand.CompanyID) {
		return nil, domain.ErrNotFound
	}
	return brand, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Brand, error) {
	brand, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		brand.Name = name
	}
	if req.LogoURL != nil {
		brand.LogoURL = optional(*req.LogoURL)
	}
	if req.IsActive != nil {
		brand.IsActive = *req.IsActive
	}
	brand.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, brand); err != nil {
		return nil, translateUnique(err)
	}
	return brand, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidPlatform
	}
	brandID, err := parseID(id)
	if err != nil {
		return err
	}
	affected, err := s.repo.SoftDelete(ctx, s.db, platformID, brandID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
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
		"brands_platform_company_name_key": domain.ErrNameExists,
	}, domain.ErrNameExists)
}
