package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/eventory/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*City, error)
	List(ctx context.Context, req ListRequest) ([]City, pagination.Meta, error)
	Get(ctx context.Context, id string) (*City, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*City, error)
	Deactivate(ctx context.Context, id string) (*City, error)
	Delete(ctx context.Context, id string) error
	// BelongsTo reports whether the active city is inside the country.
	BelongsTo(ctx context.Context, cityID, countryID string) error
}

type CreateRequest struct {
	CountryID string `json:"country_id" binding:"required,uuid"`
	Name      string `json:"name" binding:"required,min=1,max=120"`
}

type UpdateRequest struct {
	CountryID *string `json:"country_id" binding:"omitempty,uuid"`
	Name      *string `json:"name" binding:"omitempty,min=1,max=120"`
	IsActive  *bool   `json:"is_active"`
}

type ListRequest struct {
	pagination.Query
	CountryID string `form:"country_id" binding:"omitempty,uuid"`
	IsActive  *bool  `form:"is_active"`
}

var (
	ErrInvalidPlatform  = errors.New("platform context is required")
	ErrInvalidID        = errors.New("invalid city id")
	ErrInvalidName      = errors.New("city name is required")
	ErrInvalidCountry   = errors.New("country not found")
	ErrCityNotInCountry = errors.New("city does not belong to the selected country")
	ErrNotFound         = errors.New("city not found")
	ErrNameExists       = errors.New("city with this name already exists in the country")
)
