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
	Insert(ctx context.Context, db *gorm.DB, brand *Brand) error
	Update(ctx context.Context, db *gorm.DB, brand *Brand) error
	FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*Brand, error)
	List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter ListFilter, query pagination.Query) ([]Brand, int64, error)
	SoftDelete(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (int64, error)
}
