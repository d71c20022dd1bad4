package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/eventory/internal/audit/domain"
	"github.com/smallbiznis/eventory/internal/company/domain"
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
	"updated_at": "updated_at",
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     domain.Repository
	AuditSvc auditdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	auditSvc auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("company.service"),
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Company, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	companySlug := slug.Make(strings.TrimSpace(req.Slug))
	if companySlug == "" {
		companySlug = slug.Make(name)
	}
	if err := validateMargin(req.MarginPercent); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	company := &domain.Company{
		ID:            uuid.New(),
		PlatformID:    platformID,
		Name:          name,
		Slug:          companySlug,
		ContactEmail:  optional(strings.ToLower(req.ContactEmail)),
		ContactPhone:  optional(req.ContactPhone),
		MarginPercent: req.MarginPercent,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, s.db, company); err != nil {
		return nil, translateUnique(err)
	}

	s.audit(ctx, "company.create", company, map[string]any{"name": company.Name})
	return company, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Company, pagination.Meta, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, pagination.Meta{}, domain.ErrInvalidPlatform
	}

	filter := domain.ListFilter{IsActive: req.IsActive}
	if companyID, scoped := platformctx.CompanyScope(ctx); scoped {
		if companyID == nil {
			return []domain.Company{}, req.Query.Normalize(sortColumns, "name").Meta(0), nil
		}
		filter.CompanyID = companyID
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

func (s *Service) Get(ctx context.Context, id string) (*domain.Company, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	companyID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if scope, scoped := platformctx.CompanyScope(ctx); scoped && (scope == nil || *scope != companyID) {
		return nil, domain.ErrNotFound
	}

	company, err := s.repo.FindByID(ctx, s.db, platformID, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return company, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Company, error) {
	company, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		company.Name = name
		changes["name"] = name
	}
	if req.ContactEmail != nil {
		company.ContactEmail = optional(strings.ToLower(*req.ContactEmail))
	}
	if req.ContactPhone != nil {
		company.ContactPhone = optional(*req.ContactPhone)
	}
	if req.ClearMargin {
		company.MarginPercent = nil
		changes["margin_percent"] = nil
	} else if req.MarginPercent != nil {
		if err := validateMargin(req.MarginPercent); err != nil {
			return nil, err
		}
		company.MarginPercent = req.MarginPercent
		changes["margin_percent"] = req.MarginPercent.StringFixed(2)
	}
	if req.IsActive != nil {
		company.IsActive = *req.IsActive
		changes["is_active"] = *req.IsActive
	}
	company.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, company); err != nil {
		return nil, translateUnique(err)
	}

	s.audit(ctx, "company.update", company, changes)
	return company, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) (*domain.Company, error) {
	company, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !company.IsActive {
		return company, nil
	}
	company.IsActive = false
	company.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, company); err != nil {
		return nil, err
	}
	s.audit(ctx, "company.deactivate", company, nil)
	return company, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidPlatform
	}
	companyID, err := parseID(id)
	if err != nil {
		return err
	}
	affected, err := s.repo.SoftDelete(ctx, s.db, platformID, companyID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	s.audit(ctx, "company.delete", &domain.Company{ID: companyID}, nil)
	return nil
}

func (s *Service) audit(ctx context.Context, action string, company *domain.Company, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	targetID := company.ID.String()
	_ = s.auditSvc.AuditLog(ctx, "", nil, action, "company", &targetID, metadata)
}

func validateMargin(value *decimal.Decimal) error {
	if value == nil {
		return nil
	}
	if value.IsNegative() || value.GreaterThan(decimal.NewFromInt(100)) {
		return domain.ErrInvalidMargin
	}
	return nil
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
		"companies_platform_slug_key": domain.ErrSlugExists,
	}, domain.ErrSlugExists)
}
