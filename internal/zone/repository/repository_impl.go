package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/zone/domain"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, zone *domain.Zone) error {
	return db.WithContext(ctx).Create(zone).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, zone *domain.Zone) error {
	return db.WithContext(ctx).
		Model(&domain.Zone{}).
		Where("platform_id = ? AND id = ?", zone.PlatformID, zone.ID).
		Updates(map[string]any{
			"company_id": zone.CompanyID,
			"name":       zone.Name,
			"is_active":  zone.IsActive,
			"updated_at": zone.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*domain.Zone, error) {
	var zone domain.Zone
	err := db.WithContext(ctx).
		Where("platform_id = ? AND id = ?", platformID, id).
		Take(&zone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &zone, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter domain.ListFilter, query pagination.Query) ([]domain.Zone, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Zone{}).
		Where("platform_id = ?", platformID)
	if filter.WarehouseID != nil {
		stmt = stmt.Where("warehouse_id = ?", *filter.WarehouseID)
	}
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

	var items []domain.Zone
	if err := query.Apply(stmt).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (int64, error) {
	res := db.WithContext(ctx).
		Where("platform_id = ? AND id = ?", platformID, id).
		Delete(&domain.Zone{})
	return res.RowsAffected, res.Error
}
