package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/brand/domain"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, brand *domain.Brand) error {
	return db.WithContext(ctx).Create(brand).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, brand *domain.Brand) error {
	return db.WithContext(ctx).
		Model(&domain.Brand{}).
		Where("platform_id = ? AND id = ?", brand.PlatformID, brand.ID).
		Updates(map[string]any{
			"name":       brand.Name,
			"logo_url":   brand.LogoURL,
			"is_active":  brand.IsActive,
			"updated_at": brand.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*domain.Brand, error) {
	var brand domain.Brand
	err := db.WithContext(ctx).
		Where("platform_id = ? AND id = ?", platformID, id).
		Take(&brand).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter domain.ListFilter, query pagination.Query) ([]domain.Brand, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Brand{}).
		Where("platform_id = ?", platformID)
	if filter.CompanyID != nil {
		stmt = stmt.Where("company_id = ?", *filter.CompanyID)
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

	var items []domain.Brand
	if err := query.Apply(stmt).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (int64, error) {
	res := db.WithContext(ctx).
		Where("platform_id = ? AND id = ?", platformID, id).
		Delete(&domain.Brand{})
	return res.RowsAffected, res.Error
}
