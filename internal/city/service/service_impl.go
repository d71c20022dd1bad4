package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/city/domain"
	countrydomain "github.com/smallbiznis/eventory/internal/country/domain"
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
	CountryRepo countrydomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	repo        domain.Repository
	countryRepo countrydomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("city.service"),
		repo:        p.Repo,
		countryRepo: p.CountryRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.City, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	countryID, err := s.requireCountry(ctx, platformID, req.CountryID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	city := &domain.City{
		ID:         uuid.New(),
		PlatformID: platformID,
		CountryID:  countryID,
		Name:       name,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, s.db, city); err != nil {
		return nil, translateUnique(err)
	}
	return city, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.City, pagination.Meta, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, pagination.Meta{}, domain.ErrInvalidPlatform
	}

	filter := domain.ListFilter{IsActive: req.IsActive}
	if strings.TrimSpace(req.CountryID) != "" {
		countryID, err := uuid.Parse(strings.TrimSpace(req.CountryID))
		if err != nil {
			return nil, pagination.Meta{}, domain.ErrInvalidCountry
		}
		filter.CountryID = &countryID
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

func (s *Service) Get(ctx context.Context, id string) (*domain.City, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	cityID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	city, err := s.repo.FindByID(ctx, s.db, platformID, cityID)
	if err != nil {
		return nil, err
	}
	if city == nil {
		return nil, domain.ErrNotFound
	}
	return city, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.City, error) {
	city, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CountryID != nil {
		countryID, err := s.requireCountry(ctx, city.PlatformID, *req.CountryID)
		if err != nil {
			return nil, err
		}
		city.CountryID = countryID
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		city.Name = name
	}
	if req.IsActive != nil {
		city.IsActive = *req.IsActive
	}
	city.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, city); err != nil {
		return nil, translateUnique(err)
	}
	return city, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) (*domain.City, error) {
	city, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !city.IsActive {
		return city, nil
	}
	if err := s.repo.Deactivate(ctx, s.db, city.PlatformID, city.ID); err != nil {
		return nil, err
	}
	city.IsActive = false
	return city, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidPlatform
	}
	cityID, err := parseID(id)
	if err != nil {
		return err
	}
	affected, err := s.repo.SoftDelete(ctx, s.db, platformID, cityID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) BelongsTo(ctx context.Context, cityID, countryID string) error {
	city, err := s.Get(ctx, cityID)
	if err != nil {
		return err
	}
	if !city.IsActive {
		return domain.ErrNotFound
	}
	if city.CountryID.String() != strings.TrimSpace(strings.ToLower(countryID)) {
		return domain.ErrCityNotInCountry
	}
	return nil
}

func (s *Service) requireCountry(ctx context.Context, platformID uuid.UUID, value string) (uuid.UUID, error) {
	countryID, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, domain.ErrInvalidCountry
	}
	country, err := s.countryRepo.FindByID(ctx, s.db, platformID, countryID)
	if err != nil {
		return uuid.Nil, err
	}
	if country == nil {
		return uuid.Nil, domain.ErrInvalidCountry
	}
	return countryID, nil
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
		"cities_platform_country_name_key": domain.ErrNameExists,
	}, domain.ErrNameExists)
}
