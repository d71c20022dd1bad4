package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	CompanyID *uuid.UUID
	Status    string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*Invoice, error)
	FindByOrderID(ctx context.Context, db *gorm.DB, platformID, orderID uuid.UUID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter ListFilter, query pagination.Query) ([]Invoice, int64, error)
	// UpdateStatus moves an invoice only while its status is one of from.
	UpdateStatus(ctx context.Context, db *gorm.DB, invoice *Invoice, from ...string) (bool, error)
	UpdateDocument(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID, key, url string) error
	// ListDue returns ISSUED invoices of every platform whose due date passed.
	ListDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]Invoice, error)
	// NextSequence increments and returns the platform counter. Call it
	// inside a transaction.
	NextSequence(ctx context.Context, db *gorm.DB, platformID uuid.UUID) (int64, error)
}
