package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	CompanyID *uuid.UUID
	IsActive  *bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, company *Company) error
	Update(ctx context.Context, db *gorm.DB, company *Company) error
	FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*Company, error)
	List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter ListFilter, query pagination.Query) ([]Company, int64, error)
	SoftDelete(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (int64, error)
}
