package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/company/domain"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, company *domain.Company) error {
	return db.WithContext(ctx).Create(company).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, company *domain.Company) error {
	return db.WithContext(ctx).
		Model(&domain.Company{}).
		Where("platform_id = ? AND id = ?", company.PlatformID, company.ID).
		Updates(map[string]any{
			"name":           company.Name,
			"contact_email":  company.ContactEmail,
			"contact_phone":  company.ContactPhone,
			"margin_percent": company.MarginPercent,
			"is_active":      company.IsActive,
			"updated_at":     company.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*domain.Company, error) {
	var company domain.Company
	err := db.WithContext(ctx).
		Where("platform_id = ? AND id = ?", platformID, id).
		Take(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter domain.ListFilter, query pagination.Query) ([]domain.Company, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Company{}).
		Where("platform_id = ?", platformID)
	if filter.CompanyID != nil {
		stmt = stmt.Where("id = ?", *filter.CompanyID)
	}
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}
	if query.SearchTerm != "" {
		stmt = stmt.Where("(LOWER(name) LIKE ? OR LOWER(contact_email) LIKE ?)", query.Like(), query.Like())
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Company
	if err := query.Apply(stmt).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (int64, error) {
	res := db.WithContext(ctx).
		Where("platform_id = ? AND id = ?", platformID, id).
		Delete(&domain.Company{})
	return res.RowsAffected, res.Error
}
