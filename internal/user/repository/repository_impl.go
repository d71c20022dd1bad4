package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/user/domain"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Create(user).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).
		Model(&domain.User{}).
		Where("platform_id = ? AND id = ?", user.PlatformID, user.ID).
		Updates(map[string]any{
			"name":       user.Name,
			"role":       user.Role,
			"company_id": user.CompanyID,
			"is_active":  user.IsActive,
			"updated_at": user.UpdatedAt,
		}).Error
}

func (r *repo) UpdatePassword(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID, hash string, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.User{}).
		Where("platform_id = ? AND id = ?", platformID, id).
		Updates(map[string]any{"password_hash": hash, "updated_at": at}).Error
}

func (r *repo) TouchLastLogin(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.User{}).
		Where("platform_id = ? AND id = ?", platformID, id).
		Update("last_login_at", at).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).
		Where("platform_id = ? AND id = ?", platformID, id).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, platformID uuid.UUID, email string) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).
		Where("platform_id = ? AND email = ?", platformID, strings.ToLower(strings.TrimSpace(email))).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter domain.ListFilter, query pagination.Query) ([]domain.User, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("platform_id = ?", platformID)
	if filter.Role != "" {
		stmt = stmt.Where("role = ?", filter.Role)
	}
	if filter.CompanyID != nil {
		stmt = stmt.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}
	if query.SearchTerm != "" {
		stmt = stmt.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", query.Like(), query.Like())
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.User
	if err := query.Apply(stmt).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) ListActiveByRoles(ctx context.Context, db *gorm.DB, platformID uuid.UUID, companyID *uuid.UUID, roles ...string) ([]domain.User, error) {
	stmt := db.WithContext(ctx).
		Where("platform_id = ? AND is_active = ? AND role IN ?", platformID, true, roles)
	if companyID != nil {
		stmt = stmt.Where("company_id = ?", *companyID)
	}
	var items []domain.User
	if err := stmt.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CountAdmins(ctx context.Context, db *gorm.DB, platformID uuid.UUID) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("platform_id = ? AND role = ? AND is_active = ?", platformID, domain.RoleAdmin, true).
		Count(&total).Error
	return total, err
}
