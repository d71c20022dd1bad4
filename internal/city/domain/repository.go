package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	CountryID *uuid.UUID
	IsActive  *bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, city *City) error
	Update(ctx context.Context, db *gorm.DB, city *City) error
	FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*City, error)
	List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter ListFilter, query pagination.Query) ([]City, int64, error)
	Deactivate(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) error
	SoftDelete(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (int64, error)
}
