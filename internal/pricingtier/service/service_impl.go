package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/eventory/internal/audit/domain"
	citydomain "github.com/smallbiznis/eventory/internal/city/domain"
	"github.com/smallbiznis/eventory/internal/config"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/internal/pricingtier/domain"
	"github.com/smallbiznis/eventory/internal/ratelimit"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const locationLockTTL = 10 * time.Second

var sortColumns = map[string]string{
	"volume_min": "volume_min",
	"base_price": "base_price",
	"created_at": "created_at",
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     domain.Repository
	CitySvc  citydomain.Service
	AuditSvc auditdomain.Service
	Pricing  *config.PricingConfigHolder
	Locker   *ratelimit.Locker `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	citySvc  citydomain.Service
	auditSvc auditdomain.Service
	pricing  *config.PricingConfigHolder
	locker   *ratelimit.Locker
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("pricingtier.service"),
		repo:     p.Repo,
		citySvc:  p.CitySvc,
		auditSvc: p.AuditSvc,
		pricing:  p.Pricing,
		locker:   p.Locker,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.PricingTier, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}

	countryID, cityID, err := s.requireLocation(ctx, req.CountryID, req.CityID)
	if err != nil {
		return nil, err
	}
	if err := validateBand(req.VolumeMin, req.VolumeMax); err != nil {
		return nil, err
	}
	if req.BasePrice == nil || req.BasePrice.IsNegative() {
		return nil, domain.ErrInvalidBasePrice
	}
	currency, err := s.currency(req.Currency)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tier := &domain.PricingTier{
		ID:         uuid.New(),
		PlatformID: platformID,
		CountryID:  countryID,
		CityID:     cityID,
		VolumeMin:  req.VolumeMin,
		VolumeMax:  req.VolumeMax,
		BasePrice:  req.BasePrice.Round(2),
		Currency:   currency,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.withLocationLock(ctx, tier, func(ctx context.Context) error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.ensureNoOverlap(ctx, tx, tier); err != nil {
				return err
			}
			return s.repo.Insert(ctx, tx, tier)
		})
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, "pricing_tier.create", tier)
	return tier, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.PricingTier, error) {
	tier, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ClearVolumeMin {
		tier.VolumeMin = nil
	} else if req.VolumeMin != nil {
		tier.VolumeMin = req.VolumeMin
	}
	if req.ClearVolumeMax {
		tier.VolumeMax = nil
	} else if req.VolumeMax != nil {
		tier.VolumeMax = req.VolumeMax
	}
	if err := validateBand(tier.VolumeMin, tier.VolumeMax); err != nil {
		return nil, err
	}
	if req.BasePrice != nil {
		if req.BasePrice.IsNegative() {
			return nil, domain.ErrInvalidBasePrice
		}
		tier.BasePrice = req.BasePrice.Round(2)
	}
	if req.Currency != nil {
		currency, err := s.currency(*req.Currency)
		if err != nil {
			return nil, err
		}
		tier.Currency = currency
	}
	if req.IsActive != nil {
		tier.IsActive = *req.IsActive
	}
	tier.UpdatedAt = time.Now().UTC()

	err = s.withLocationLock(ctx, tier, func(ctx context.Context) error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			if tier.IsActive {
				if err := s.ensureNoOverlap(ctx, tx, tier); err != nil {
					return err
				}
			}
			return s.repo.Update(ctx, tx, tier)
		})
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, "pricing_tier.update", tier)
	return tier, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.PricingTier, pagination.Meta, error) {
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

	query := req.Query.Normalize(sortColumns, "volume_min")
	if req.Query.SortOrder == "" {
		query.SortOrder = "asc"
	}
	items, total, err := s.repo.List(ctx, s.db, platformID, filter, query)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return items, query.Meta(total), nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.PricingTier, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	tierID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	tier, err := s.repo.FindByID(ctx, s.db, platformID, tierID)
	if err != nil {
		return nil, err
	}
	if tier == nil {
		return nil, domain.ErrNotFound
	}
	return tier, nil
}

// Deactivate is idempotent.
func (s *Service) Deactivate(ctx context.Context, id string) (*domain.PricingTier, error) {
	tier, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tier.IsActive {
		return tier, nil
	}
	if err := s.repo.Deactivate(ctx, s.db, tier.PlatformID, tier.ID); err != nil {
		return nil, err
	}
	tier.IsActive = false
	s.audit(ctx, "pricing_tier.deactivate", tier)
	return tier, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidPlatform
	}
	tierID, err := parseID(id)
	if err != nil {
		return err
	}
	affected, err := s.repo.SoftDelete(ctx, s.db, platformID, tierID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	s.audit(ctx, "pricing_tier.delete", &domain.PricingTier{ID: tierID})
	return nil
}

func (s *Service) Match(ctx context.Context, req domain.MatchRequest) (*domain.PricingTier, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	countryID, err := uuid.Parse(strings.TrimSpace(req.CountryID))
	if err != nil {
		return nil, domain.ErrInvalidLocation
	}
	cityID, err := uuid.Parse(strings.TrimSpace(req.CityID))
	if err != nil {
		return nil, domain.ErrInvalidLocation
	}
	volume, err := decimal.NewFromString(strings.TrimSpace(req.Volume))
	if err != nil || volume.IsNegative() {
		return nil, domain.ErrNegativeVolume
	}
	return FindMatch(ctx, s.db, s.repo, platformID, countryID, cityID, volume)
}

// FindMatch returns the active tier for the location whose band contains
// volume. Callers inside a transaction pass their tx.
func FindMatch(ctx context.Context, db *gorm.DB, repo domain.Repository, platformID, countryID, cityID uuid.UUID, volume decimal.Decimal) (*domain.PricingTier, error) {
	tiers, err := repo.ListActiveForLocation(ctx, db, platformID, countryID, cityID)
	if err != nil {
		return nil, err
	}
	for i := range tiers {
		if tiers[i].Contains(volume) {
			return &tiers[i], nil
		}
	}
	return nil, domain.ErrNoMatchingTier
}

// ensureNoOverlap locks the parent city, then scans the active tiers of the
// same location. The tier under update is skipped by id.
func (s *Service) ensureNoOverlap(ctx context.Context, tx *gorm.DB, tier *domain.PricingTier) error {
	if err := s.repo.LockLocation(ctx, tx, tier.PlatformID, tier.CountryID, tier.CityID); err != nil {
		return err
	}
	existing, err := s.repo.ListActiveForLocation(ctx, tx, tier.PlatformID, tier.CountryID, tier.CityID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == tier.ID {
			continue
		}
		if domain.Overlaps(tier.VolumeMin, tier.VolumeMax, other.VolumeMin, other.VolumeMax) {
			s.log.Info("pricing tier overlap rejected",
				zap.String("tier_id", tier.ID.String()),
				zap.String("conflicts_with", other.ID.String()),
			)
			return domain.ErrTierOverlap
		}
	}
	return nil
}

func (s *Service) withLocationLock(ctx context.Context, tier *domain.PricingTier, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:pricing_tier:%s:%s:%s", tier.PlatformID, tier.CountryID, tier.CityID)
	err := s.locker.WithLock(ctx, key, locationLockTTL, fn)
	if errors.Is(err, ratelimit.ErrLockHeld) {
		return domain.ErrTierBusy
	}
	return err
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

func (s *Service) currency(value string) (string, error) {
	currency := strings.ToUpper(strings.TrimSpace(value))
	if currency == "" && s.pricing != nil {
		currency = s.pricing.Get().Currency
	}
	if len(currency) != 3 {
		return "", domain.ErrInvalidCurrency
	}
	return currency, nil
}

func (s *Service) audit(ctx context.Context, action string, tier *domain.PricingTier) {
	if s.auditSvc == nil {
		return
	}
	targetID := tier.ID.String()
	metadata := map[string]any{}
	if tier.PlatformID != uuid.Nil {
		metadata["country_id"] = tier.CountryID.String()
		metadata["city_id"] = tier.CityID.String()
		metadata["base_price"] = tier.BasePrice.StringFixed(2)
		metadata["is_active"] = tier.IsActive
		if tier.VolumeMin != nil {
			metadata["volume_min"] = tier.VolumeMin.String()
		}
		if tier.VolumeMax != nil {
			metadata["volume_max"] = tier.VolumeMax.String()
		}
	}
	_ = s.auditSvc.AuditLog(ctx, "", nil, action, "pricing_tier", &targetID, metadata)
}

func validateBand(min, max *decimal.Decimal) error {
	if (min != nil && min.IsNegative()) || (max != nil && max.IsNegative()) {
		return domain.ErrNegativeVolume
	}
	if min != nil && max != nil && !min.LessThan(*max) {
		return domain.ErrInvalidVolume
	}
	return nil
}

func parseID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, domain.ErrInvalidID
	}
	return id, nil
}
