package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	CountryID *uuid.UUID
	CityID    *uuid.UUID
	IsActive  *bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, warehouse *Warehouse) error
	Update(ctx context.Context, db *gorm.DB, warehouse *Warehouse) error
	FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*Warehouse, error)
	List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter ListFilter, query pagination.Query) ([]Warehouse, int64, error)
	SoftDelete(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (int64, error)
}
