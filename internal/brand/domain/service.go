package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/eventory/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Brand, error)
	List(ctx context.Context, req ListRequest) ([]Brand, pagination.Meta, error)
	Get(ctx context.Context, id string) (*Brand, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Brand, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	CompanyID string `json:"company_id" binding:"required,uuid"`
	Name      string `json:"name" binding:"required,min=1,max=160"`
	LogoURL   string `json:"logo_url" binding:"omitempty,url"`
}

type UpdateRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=160"`
	LogoURL  *string `json:"logo_url" binding:"omitempty,url"`
	IsActive *bool   `json:"is_active"`
}

type ListRequest struct {
	pagination.Query
	CompanyID string `form:"company_id" binding:"omitempty,uuid"`
	IsActive  *bool  `form:"is_active"`
}

var (
	ErrInvalidPlatform = errors.New("platform context is required")
	ErrInvalidID       = errors.New("invalid brand id")
	ErrInvalidName     = errors.New("brand name is required")
	ErrInvalidCompany  = errors.New("company not found")
	ErrNotFound        = errors.New("brand not found")
	ErrNameExists      = errors.New("brand with this name already exists for the company")
)
