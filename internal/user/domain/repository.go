package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Role      string
	CompanyID *uuid.UUID
	IsActive  *bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	Update(ctx context.Context, db *gorm.DB, user *User) error
	UpdatePassword(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID, hash string, at time.Time) error
	TouchLastLogin(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID, at time.Time) error
	FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, platformID uuid.UUID, email string) (*User, error)
	List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter ListFilter, query pagination.Query) ([]User, int64, error)
	// ListActiveByRoles returns active users holding any of roles. A non-nil
	// companyID narrows the result to that company.
	ListActiveByRoles(ctx context.Context, db *gorm.DB, platformID uuid.UUID, companyID *uuid.UUID, roles ...string) ([]User, error)
	CountAdmins(ctx context.Context, db *gorm.DB, platformID uuid.UUID) (int64, error)
}
