package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/asset/domain"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, asset *domain.Asset) error {
	return db.WithContext(ctx).Create(asset).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, asset *domain.Asset) error {
	return db.WithContext(ctx).
		Model(&domain.Asset{}).
		Where("platform_id = ? AND id = ?", asset.PlatformID, asset.ID).
		Updates(map[string]any{
			"brand_id":     asset.BrandID,
			"warehouse_id": asset.WarehouseID,
			"zone_id":      asset.ZoneID,
			"name":         asset.Name,
			"sku":          asset.SKU,
			"category":     asset.Category,
			"description":  asset.Description,
			"unit_volume":  asset.UnitVolume,
			"unit_weight":  asset.UnitWeight,
			"condition":    asset.Condition,
			"is_active":    asset.IsActive,
			"updated_at":   asset.UpdatedAt,
		}).Error
}

func (r *repo) UpdateImage(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID, imageURL string) error {
	return db.WithContext(ctx).
		Model(&domain.Asset{}).
		Where("platform_id = ? AND id = ?", platformID, id).
		Update("image_url", imageURL).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*domain.Asset, error) {
	var asset domain.Asset
	err := db.WithContext(ctx).
		Where("platform_id = ? AND id = ?", platformID, id).
		Take(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, platformID uuid.UUID, ids []uuid.UUID) ([]domain.Asset, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []domain.Asset
	err := db.WithContext(ctx).
		Where("platform_id = ? AND id IN ?", platformID, ids).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter domain.ListFilter, query pagination.Query) ([]domain.Asset, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Asset{}).
		Where("platform_id = ?", platformID)
	if filter.CompanyID != nil {
		stmt = stmt.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.BrandID != nil {
		stmt = stmt.Where("brand_id = ?", *filter.BrandID)
	}
	if filter.WarehouseID != nil {
		stmt = stmt.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.Category != "" {
		stmt = stmt.Where("LOWER(category) = LOWER(?)", filter.Category)
	}
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}
	if query.SearchTerm != "" {
		stmt = stmt.Where("(LOWER(name) LIKE ? OR LOWER(sku) LIKE ?)", query.Like(), query.Like())
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []domain.Asset
	if err := query.Apply(stmt).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) Reserve(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID, qty int) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Asset{}).
		Where("platform_id = ? AND id = ? AND is_active = ? AND available_quantity >= ?", platformID, id, true, qty).
		Update("available_quantity", gorm.Expr("available_quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) Release(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID, qty int) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Asset{}).
		Where("platform_id = ? AND id = ? AND available_quantity + ? <= total_quantity", platformID, id, qty).
		Update("available_quantity", gorm.Expr("available_quantity + ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) Resize(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID, total int) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Asset{}).
		Where("platform_id = ? AND id = ? AND total_quantity - available_quantity <= ?", platformID, id, total).
		Updates(map[string]any{
			"available_quantity": gorm.Expr("available_quantity + (? - total_quantity)", total),
			"total_quantity":     total,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
