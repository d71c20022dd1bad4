package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/platform/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, platform *domain.Platform) error {
	return db.WithContext(ctx).Create(platform).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, platform *domain.Platform) error {
	return db.WithContext(ctx).
		Model(&domain.Platform{}).
		Where("id = ?", platform.ID).
		Updates(map[string]any{
			"name":                   platform.Name,
			"domain":                 platform.Domain,
			"currency":               platform.Currency,
			"default_margin_percent": platform.DefaultMarginPercent,
			"updated_at":             platform.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Platform, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Platform, error) {
	return r.findOne(ctx, db, "slug = ?", slug)
}

func (r *repo) FindByDomain(ctx context.Context, db *gorm.DB, host string) (*domain.Platform, error) {
	return r.findOne(ctx, db, "domain = ?", host)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, arg any) (*domain.Platform, error) {
	var platform domain.Platform
	err := db.WithContext(ctx).Where(query, arg).Take(&platform).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &platform, nil
}
