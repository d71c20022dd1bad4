package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	IsActive *bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, country *Country) error
	Update(ctx context.Context, db *gorm.DB, country *Country) error
	FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*Country, error)
	List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter ListFilter, query pagination.Query) ([]Country, int64, error)
	Deactivate(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) error
	SoftDelete(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (int64, error)
}
