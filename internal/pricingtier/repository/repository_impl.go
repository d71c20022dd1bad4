package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/pricingtier/domain"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tier *domain.PricingTier) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO pricing_tiers (
			id, platform_id, country_id, city_id, volume_min, volume_max,
			base_price, currency, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tier.ID,
		tier.PlatformID,
		tier.CountryID,
		tier.CityID,
		tier.VolumeMin,
		tier.VolumeMax,
		tier.BasePrice,
		tier.Currency,
		tier.IsActive,
		tier.CreatedAt,
		tier.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, tier *domain.PricingTier) error {
	return db.WithContext(ctx).Exec(
		`UPDATE pricing_tiers
		 SET volume_min = ?, volume_max = ?, base_price = ?, currency = ?, is_active = ?, updated_at = ?
		 WHERE platform_id = ? AND id = ? AND deleted_at IS NULL`,
		tier.VolumeMin,
		tier.VolumeMax,
		tier.BasePrice,
		tier.Currency,
		tier.IsActive,
		tier.UpdatedAt,
		tier.PlatformID,
		tier.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*domain.PricingTier, error) {
	var tier domain.PricingTier
	err := db.WithContext(ctx).
		Where("platform_id = ? AND id = ?", platformID, id).
		Take(&tier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter domain.ListFilter, query pagination.Query) ([]domain.PricingTier, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.PricingTier{}).
		Where("platform_id = ?", platformID)
	if filter.CountryID != nil {
		stmt = stmt.Where("country_id = ?", *filter.CountryID)
	}
	if filter.CityID != nil {
		stmt = stmt.Where("city_id = ?", *filter.CityID)
	}
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.PricingTier
	if err := query.Apply(stmt).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// LockLocation holds the parent city row until the transaction ends. On
// sqlite the locking clause is dropped and the single writer serialises.
func (r *repo) LockLocation(ctx context.Context, db *gorm.DB, platformID, countryID, cityID uuid.UUID) error {
	var row struct{ ID uuid.UUID }
	err := db.WithContext(ctx).
		Table("cities").
		Select("id").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("platform_id = ? AND country_id = ? AND id = ? AND deleted_at IS NULL", platformID, countryID, cityID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrInvalidLocation
	}
	return err
}

func (r *repo) ListActiveForLocation(ctx context.Context, db *gorm.DB, platformID, countryID, cityID uuid.UUID) ([]domain.PricingTier, error) {
	var items []domain.PricingTier
	err := db.WithContext(ctx).
		Where("platform_id = ? AND country_id = ? AND city_id = ? AND is_active = ?", platformID, countryID, cityID, true).
		Order("volume_min ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Deactivate(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) error {
	return db.WithContext(ctx).
		Model(&domain.PricingTier{}).
		Where("platform_id = ? AND id = ?", platformID, id).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now().UTC()}).Error
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (int64, error) {
	res := db.WithContext(ctx).
		Where("platform_id = ? AND id = ?", platformID, id).
		Delete(&domain.PricingTier{})
	return res.RowsAffected, res.Error
}
