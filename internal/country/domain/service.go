package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/eventory/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Country, error)
	List(ctx context.Context, req ListRequest) ([]Country, pagination.Meta, error)
	Get(ctx context.Context, id string) (*Country, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Country, error)
	Deactivate(ctx context.Context, id string) (*Country, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=120"`
	ISOCode string `json:"iso_code" binding:"required,iso2"`
}

type UpdateRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=120"`
	ISOCode  *string `json:"iso_code" binding:"omitempty,iso2"`
	IsActive *bool   `json:"is_active"`
}

type ListRequest struct {
	pagination.Query
	IsActive *bool `form:"is_active"`
}

var (
	ErrInvalidPlatform = errors.New("platform context is required")
	ErrInvalidID       = errors.New("invalid country id")
	ErrInvalidName     = errors.New("country name is required")
	ErrInvalidISOCode  = errors.New("iso code must be two letters")
	ErrNotFound        = errors.New("country not found")
	ErrISOCodeExists   = errors.New("country with this ISO code already exists")
)
