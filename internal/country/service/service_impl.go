package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/country/domain"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var sortColumns = map[string]string{
	"name":       "name",
	"iso_code":   "iso_code",
	"created_at": "created_at",
}

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("country.service"),
		repo: p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Country, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	iso, err := normalizeISO(req.ISOCode)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	country := &domain.Country{
		ID:         uuid.New(),
		PlatformID: platformID,
		Name:       name,
		ISOCode:    iso,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, s.db, country); err != nil {
		return nil, translateUnique(err)
	}
	return country, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Country, pagination.Meta, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, pagination.Meta{}, domain.ErrInvalidPlatform
	}

	query := req.Query.Normalize(sortColumns, "name")
	if req.Query.SortOrder == "" {
		query.SortOrder = "asc"
	}
	items, total, err := s.repo.List(ctx, s.db, platformID, domain.ListFilter{IsActive: req.IsActive}, query)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return items, query.Meta(total), nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Country, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	countryID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	country, err := s.repo.FindByID(ctx, s.db, platformID, countryID)
	if err != nil {
		return nil, err
	}
	if country == nil {
		return nil, domain.ErrNotFound
	}
	return country, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Country, error) {
	country, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		country.Name = name
	}
	if req.ISOCode != nil {
		iso, err := normalizeISO(*req.ISOCode)
		if err != nil {
			return nil, err
		}
		country.ISOCode = iso
	}
	if req.IsActive != nil {
		country.IsActive = *req.IsActive
	}
	country.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, country); err != nil {
		return nil, translateUnique(err)
	}
	return country, nil
}

// Deactivate is idempotent: an inactive country is returned unchanged.
func (s *Service) Deactivate(ctx context.Context, id string) (*domain.Country, error) {
	country, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !country.IsActive {
		return country, nil
	}
	if err := s.repo.Deactivate(ctx, s.db, country.PlatformID, country.ID); err != nil {
		return nil, err
	}
	country.IsActive = false
	return country, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidPlatform
	}
	countryID, err := parseID(id)
	if err != nil {
		return err
	}
	affected, err := s.repo.SoftDelete(ctx, s.db, platformID, countryID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	s.log.Info("country deleted", zap.String("country_id", countryID.String()))
	return nil
}

func normalizeISO(value string) (string, error) {
	iso := strings.ToUpper(strings.TrimSpace(value))
	if len(iso) != 2 || iso[0] < 'A' || iso[0] > 'Z' || iso[1] < 'A' || iso[1] > 'Z' {
		return "", domain.ErrInvalidISOCode
	}
	return iso, nil
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
		"countries_platform_iso_key": domain.ErrISOCodeExists,
	}, domain.ErrISOCodeExists)
}
