package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/asset/domain"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type collectionRepo struct{}

func ProvideCollections() domain.CollectionRepository {
	return &collectionRepo{}
}

func (r *collectionRepo) Insert(ctx context.Context, db *gorm.DB, collection *domain.Collection) error {
	return db.WithContext(ctx).Create(collection).Error
}

func (r *collectionRepo) Update(ctx context.Context, db *gorm.DB, collection *domain.Collection) error {
	return db.WithContext(ctx).
		Model(&domain.Collection{}).
		Where("platform_id = ? AND id = ?", collection.PlatformID, collection.ID).
		Updates(map[string]any{
			"name":        collection.Name,
			"description": collection.Description,
			"is_active":   collection.IsActive,
			"updated_at":  collection.UpdatedAt,
		}).Error
}

func (r *collectionRepo) FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*domain.Collection, error) {
	var collection domain.Collection
	err := db.WithContext(ctx).
		Where("platform_id = ? AND id = ?", platformID, id).
		Take(&collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

func (r *collectionRepo) FindByIDs(ctx context.Context, db *gorm.DB, platformID uuid.UUID, ids []uuid.UUID) ([]domain.Collection, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []domain.Collection
	err := db.WithContext(ctx).
		Where("platform_id = ? AND id IN ?", platformID, ids).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *collectionRepo) List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter domain.CollectionListFilter, query pagination.Query) ([]domain.Collection, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Collection{}).
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
	var items []domain.Collection
	if err := query.Apply(stmt).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *collectionRepo) SoftDelete(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (int64, error) {
	res := db.WithContext(ctx).
		Where("platform_id = ? AND id = ?", platformID, id).
		Delete(&domain.Collection{})
	return res.RowsAffected, res.Error
}

func (r *collectionRepo) ReplaceItems(ctx context.Context, db *gorm.DB, collectionID uuid.UUID, items []domain.CollectionItem) error {
	if err := db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Delete(&domain.CollectionItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *collectionRepo) ListItems(ctx context.Context, db *gorm.DB, collectionIDs []uuid.UUID) ([]domain.CollectionItem, error) {
	if len(collectionIDs) == 0 {
		return nil, nil
	}
	var items []domain.CollectionItem
	err := db.WithContext(ctx).
		Where("collection_id IN ?", collectionIDs).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
