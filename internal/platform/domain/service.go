package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type Service interface {
	// Resolve maps an X-Platform header value (id, slug or domain) to an
	// active platform.
	Resolve(ctx context.Context, key string) (*Platform, error)
	Create(ctx context.Context, req CreateRequest) (*Platform, error)
	Get(ctx context.Context) (*Platform, error)
	Update(ctx context.Context, req UpdateRequest) (*Platform, error)
}

type CreateRequest struct {
	Name                 string
	Slug                 string
	Domain               string
	Currency             string
	DefaultMarginPercent *decimal.Decimal
}

type UpdateRequest struct {
	Name                 *string          `json:"name" binding:"omitempty,min=1,max=120"`
	Domain               *string          `json:"domain" binding:"omitempty,max=255"`
	Currency             *string          `json:"currency" binding:"omitempty,len=3"`
	DefaultMarginPercent *decimal.Decimal `json:"default_margin_percent"`
}

var (
	ErrInvalidPlatform = errors.New("platform header is required")
	ErrInvalidName     = errors.New("platform name is required")
	ErrInvalidCurrency = errors.New("currency must be a 3 letter code")
	ErrInvalidMargin   = errors.New("margin percent must be between 0 and 100")
	ErrNotFound        = errors.New("platform not found")
	ErrSlugExists      = errors.New("platform with this slug already exists")
	ErrDomainExists    = errors.New("platform with this domain already exists")
)
