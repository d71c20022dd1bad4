package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	CompanyID   *uuid.UUID
	BrandID     *uuid.UUID
	WarehouseID *uuid.UUID
	Category    string
	IsActive    *bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, asset *Asset) error
	Update(ctx context.Context, db *gorm.DB, asset *Asset) error
	UpdateImage(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID, imageURL string) error
	FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*Asset, error)
	FindByIDs(ctx context.Context, db *gorm.DB, platformID uuid.UUID, ids []uuid.UUID) ([]Asset, error)
	List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter ListFilter, query pagination.Query) ([]Asset, int64, error)
	// Reserve decrements availability only when enough stock is free and
	// reports whether the row changed.
	Reserve(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID, qty int) (bool, error)
	Release(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID, qty int) (bool, error)
	// Resize sets the total quantity and shifts availability by the same
	// delta. It refuses a total below the currently reserved quantity.
	Resize(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID, total int) (bool, error)
}

type CollectionListFilter struct {
	CompanyID *uuid.UUID
	IsActive  *bool
}

type CollectionRepository interface {
	Insert(ctx context.Context, db *gorm.DB, collection *Collection) error
	Update(ctx context.Context, db *gorm.DB, collection *Collection) error
	FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*Collection, error)
	FindByIDs(ctx context.Context, db *gorm.DB, platformID uuid.UUID, ids []uuid.UUID) ([]Collection, error)
	List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter CollectionListFilter, query pagination.Query) ([]Collection, int64, error)
	SoftDelete(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (int64, error)
	ReplaceItems(ctx context.Context, db *gorm.DB, collectionID uuid.UUID, items []CollectionItem) error
	ListItems(ctx context.Context, db *gorm.DB, collectionIDs []uuid.UUID) ([]CollectionItem, error)
}
