package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	CompanyID *uuid.UUID
	Status    string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	// UpdateGuarded writes the mutable columns only while the stored status
	// still equals expected.
	UpdateGuarded(ctx context.Context, db *gorm.DB, order *Order, expected string) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*Order, error)
	List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter ListFilter, query pagination.Query) ([]Order, int64, error)

	InsertItems(ctx context.Context, db *gorm.DB, items []OrderItem) error
	UpdateItem(ctx context.Context, db *gorm.DB, item *OrderItem) error
	DeleteItem(ctx context.Context, db *gorm.DB, orderID, itemID uuid.UUID) error
	FindItem(ctx context.Context, db *gorm.DB, orderID, itemID uuid.UUID) (*OrderItem, error)
	ListItems(ctx context.Context, db *gorm.DB, orderID uuid.UUID) ([]OrderItem, error)

	InsertHistory(ctx context.Context, db *gorm.DB, entry *StatusHistory) error
	ListHistory(ctx context.Context, db *gorm.DB, orderID uuid.UUID) ([]StatusHistory, error)
}
