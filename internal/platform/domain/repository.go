package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, platform *Platform) error
	Update(ctx context.Context, db *gorm.DB, platform *Platform) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Platform, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Platform, error)
	FindByDomain(ctx context.Context, db *gorm.DB, domain string) (*Platform, error)
}
