package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/eventory/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Warehouse, error)
	List(ctx context.Context, req ListRequest) ([]Warehouse, pagination.Meta, error)
	Get(ctx context.Context, id string) (*Warehouse, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Warehouse, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	CountryID string `json:"country_id" binding:"required,uuid"`
	CityID    string `json:"city_id" binding:"required,uuid"`
	Name      string `json:"name" binding:"required,min=1,max=160"`
	Code      string `json:"code" binding:"required,min=2,max=32"`
	Address   string `json:"address" binding:"omitempty,max=500"`
}

type UpdateRequest struct {
	CountryID *string `json:"country_id" binding:"omitempty,uuid"`
	CityID    *string `json:"city_id" binding:"omitempty,uuid"`
	Name      *string `json:"name" binding:"omitempty,min=1,max=160"`
	Code      *string `json:"code" binding:"omitempty,min=2,max=32"`
	Address   *string `json:"address" binding:"omitempty,max=500"`
	IsActive  *bool   `json:"is_active"`
}

type ListRequest struct {
	pagination.Query
	CountryID string `form:"country_id" binding:"omitempty,uuid"`
	CityID    string `form:"city_id" binding:"omitempty,uuid"`
	IsActive  *bool  `form:"is_active"`
}

var (
	ErrInvalidPlatform = errors.New("platform context is required")
	ErrInvalidID       = errors.New("invalid warehouse id")
	ErrInvalidName     = errors.New("warehouse name is required")
	ErrInvalidCode     = errors.New("warehouse code is required")
	ErrInvalidLocation = errors.New("invalid country or city")
	ErrNotFound        = errors.New("warehouse not found")
	ErrCodeExists      = errors.New("warehouse with this code already exists")
)
