package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/country/domain"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, country *domain.Country) error {
	return db.WithContext(ctx).Create(country).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, country *domain.Country) error {
	return db.WithContext(ctx).
		Model(&domain.Country{}).
		Where("platform_id = ? AND id = ?", country.PlatformID, country.ID).
		Updates(map[string]any{
			"name":       country.Name,
			"iso_code":   country.ISOCode,
			"is_active":  country.IsActive,
			"updated_at": country.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*domain.Country, error) {
	var country domain.Country
	err := db.WithContext(ctx).
		Where("platform_id = ? AND id = ?", platformID, id).
		Take(&country).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &country, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter domain.ListFilter, query pagination.Query) ([]domain.Country, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Country{}).
		Where("platform_id = ?", platformID)
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}
	if query.SearchTerm != "" {
		stmt = stmt.Where("(LOWER(name) LIKE ? OR LOWER(iso_code) LIKE ?)", query.Like(), query.Like())
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Country
	if err := query.Apply(stmt).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Deactivate(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) error {
	return db.WithContext(ctx).
		Model(&domain.Country{}).
		Where("platform_id = ? AND id = ?", platformID, id).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now().UTC()}).Error
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (int64, error) {
	res := db.WithContext(ctx).
		Where("platform_id = ? AND id = ?", platformID, id).
		Delete(&domain.Country{})
	return res.RowsAffected, res.Error
}
