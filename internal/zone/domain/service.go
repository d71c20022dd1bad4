package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/eventory/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Zone, error)
	List(ctx context.Context, req ListRequest) ([]Zone, pagination.Meta, error)
	Get(ctx context.Context, id string) (*Zone, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Zone, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	WarehouseID string `json:"warehouse_id" binding:"required,uuid"`
	CompanyID   string `json:"company_id" binding:"omitempty,uuid"`
	Name        string `json:"name" binding:"required,min=1,max=120"`
}

type UpdateRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=120"`
	// CompanyID reassigns the zone; an empty string releases it.
	CompanyID *string `json:"company_id" binding:"omitempty"`
	IsActive  *bool   `json:"is_active"`
}

type ListRequest struct {
	pagination.Query
	WarehouseID string `form:"warehouse_id" binding:"omitempty,uuid"`
	CompanyID   string `form:"company_id" binding:"omitempty,uuid"`
	IsActive    *bool  `form:"is_active"`
}

var (
	ErrInvalidPlatform  = errors.New("platform context is required")
	ErrInvalidID        = errors.New("invalid zone id")
	ErrInvalidName      = errors.New("zone name is required")
	ErrInvalidWarehouse = errors.New("warehouse not found")
	ErrInvalidCompany   = errors.New("company not found")
	ErrNotFound         = errors.New("zone not found")
	ErrNameExists       = errors.New("zone with this name already exists in the warehouse")
)
