package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*PricingTier, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*PricingTier, error)
	List(ctx context.Context, req ListRequest) ([]PricingTier, pagination.Meta, error)
	Get(ctx context.Context, id string) (*PricingTier, error)
	Deactivate(ctx context.Context, id string) (*PricingTier, error)
	Delete(ctx context.Context, id string) error
	// Match returns the active tier whose band contains volume, or
	// ErrNoMatchingTier.
	Match(ctx context.Context, req MatchRequest) (*PricingTier, error)
}

type CreateRequest struct {
	CountryID string           `json:"country_id" binding:"required,uuid"`
	CityID    string           `json:"city_id" binding:"required,uuid"`
	VolumeMin *decimal.Decimal `json:"volume_min"`
	VolumeMax *decimal.Decimal `json:"volume_max"`
	BasePrice *decimal.Decimal `json:"base_price" binding:"required"`
	Currency  string           `json:"currency" binding:"omitempty,len=3"`
}

type UpdateRequest struct {
	VolumeMin *decimal.Decimal `json:"volume_min"`
	VolumeMax *decimal.Decimal `json:"volume_max"`
	// ClearVolumeMin and ClearVolumeMax make the bound unbounded.
	ClearVolumeMin bool             `json:"clear_volume_min"`
	ClearVolumeMax bool             `json:"clear_volume_max"`
	BasePrice      *decimal.Decimal `json:"base_price"`
	Currency       *string          `json:"currency" binding:"omitempty,len=3"`
	IsActive       *bool            `json:"is_active"`
}

type ListRequest struct {
	pagination.Query
	CountryID string `form:"country_id" binding:"omitempty,uuid"`
	CityID    string `form:"city_id" binding:"omitempty,uuid"`
	IsActive  *bool  `form:"is_active"`
}

type MatchRequest struct {
	CountryID string `form:"country_id" binding:"required,uuid"`
	CityID    string `form:"city_id" binding:"required,uuid"`
	Volume    string `form:"volume" binding:"required"`
}

var (
	ErrInvalidPlatform  = errors.New("platform context is required")
	ErrInvalidID        = errors.New("invalid pricing tier id")
	ErrInvalidLocation  = errors.New("invalid country or city")
	ErrInvalidVolume    = errors.New("volume_min must be less than volume_max")
	ErrNegativeVolume   = errors.New("volume bounds cannot be negative")
	ErrInvalidBasePrice = errors.New("base_price must be zero or greater")
	ErrInvalidCurrency  = errors.New("currency must be a 3 letter code")
	ErrNotFound         = errors.New("pricing tier not found")
	ErrTierOverlap      = errors.New("volume range overlaps with an existing pricing tier")
	ErrNoMatchingTier   = errors.New("no pricing tier matches this location and volume")
	ErrTierBusy         = errors.New("pricing tiers for this location are being updated, retry shortly")
)
