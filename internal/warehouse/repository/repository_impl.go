package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/warehouse/domain"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, warehouse *domain.Warehouse) error {
	return db.WithContext(ctx).Create(warehouse).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, warehouse *domain.Warehouse) error {
	return db.WithContext(ctx).
		Model(&domain.Warehouse{}).
		Where("platform_id = ? AND id = ?", warehouse.PlatformID, warehouse.ID).
		Updates(map[string]any{
			"country_id": warehouse.CountryID,
			"city_id":    warehouse.CityID,
			"name":       warehouse.Name,
			"code":       warehouse.Code,
			"address":    warehouse.Address,
			"is_active":  warehouse.IsActive,
			"updated_at": warehouse.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*domain.Warehouse, error) {
	var warehouse domain.Warehouse
	err := db.WithContext(ctx).
		Where("platform_id = ? AND id = ?", platformID, id).
		Take(&warehouse).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter domain.ListFilter, query pagination.Query) ([]domain.Warehouse, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Warehouse{}).
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
	if query.SearchTerm != "" {
		stmt = stmt.Where("(LOWER(name) LIKE ? OR LOWER(code) LIKE ?)", query.Like(), query.Like())
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Warehouse
	if err := query.Apply(stmt).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (int64, error) {
	res := db.WithContext(ctx).
		Where("platform_id = ? AND id = ?", platformID, id).
		Delete(&domain.Warehouse{})
	return res.RowsAffected, res.Error
}
