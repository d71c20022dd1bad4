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
	Insert(ctx context.Context, db *gorm.DB, tier *PricingTier) error
	Update(ctx context.Context, db *gorm.DB, tier *PricingTier) error
	FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*PricingTier, error)
	List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter ListFilter, query pagination.Query) ([]PricingTier, int64, error)
	// LockLocation row-locks the (country, city) pair. Writers that check
	// overlap call it first in the same transaction.
	LockLocation(ctx context.Context, db *gorm.DB, platformID, countryID, cityID uuid.UUID) error
	// ListActiveForLocation returns the active tiers of one (country, city).
	ListActiveForLocation(ctx context.Context, db *gorm.DB, platformID, countryID, cityID uuid.UUID) ([]PricingTier, error)
	Deactivate(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) error
	SoftDelete(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (int64, error)
}
