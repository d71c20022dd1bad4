package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/city/domain"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, city *domain.City) error {
	return db.WithContext(ctx).Create(city).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, city *domain.City) error {
	return db.WithContext(ctx).
		Model(&domain.City{}).
		Where("platform_id = ? AND id = ?", city.PlatformID, city.ID).
		Updates(map[string]any{
			"country_id": city.CountryID,
			"name":       city.Name,
			"is_active":  city.IsActive,
			"updated_at": city.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*domain.City, error) {
	var city domain.City
	err := db.WithContext(ctx).
		Where("platform_id = ? AND id = ?", platformID, id).
		Take(&city).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &city, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter domain.ListFilter, query pagination.Query) ([]domain.City, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.City{}).
		Where("platform_id = ?", platformID)
	if filter.CountryID != nil {
		stmt = stmt.Where("country_id = ?", *filter.CountryID)
	}
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}
	if query.SearchTerm != "" {
		stmt = stmt.Where("LOWER(name) LIKE ?", query.Like())
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.City
	if err := query.Apply(stmt).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Deactivate(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) error {
	return db.WithContext(ctx).
		Model(&domain.City{}).
		Where("platform_id = ? AND id = ?", platformID, id).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now().UTC()}).Error
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (int64, error) {
	res := db.WithContext(ctx).
		Where("platform_id = ? AND id = ?", platformID, id).
		Delete(&domain.City{})
	return res.RowsAffected, res.Error
}
