package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Company, error)
	List(ctx context.Context, req ListRequest) ([]Company, pagination.Meta, error)
	Get(ctx context.Context, id string) (*Company, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Company, error)
	Deactivate(ctx context.Context, id string) (*Company, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Name          string           `json:"name" binding:"required,min=1,max=160"`
	Slug          string           `json:"slug" binding:"omitempty,max=160"`
	ContactEmail  string           `json:"contact_email" binding:"omitempty,email"`
	ContactPhone  string           `json:"contact_phone" binding:"omitempty,max=40"`
	MarginPercent *decimal.Decimal `json:"margin_percent"`
}

type UpdateRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=160"`
	ContactEmail  *string          `json:"contact_email" binding:"omitempty,email"`
	ContactPhone  *string          `json:"contact_phone" binding:"omitempty,max=40"`
	MarginPercent *decimal.Decimal `json:"margin_percent"`
	// ClearMargin drops the company override so the platform default applies.
	ClearMargin bool  `json:"clear_margin"`
	IsActive    *bool `json:"is_active"`
}

type ListRequest struct {
	pagination.Query
	IsActive *bool `form:"is_active"`
}

var (
	ErrInvalidPlatform = errors.New("platform context is required")
	ErrInvalidID       = errors.New("invalid company id")
	ErrInvalidName     = errors.New("company name is required")
	ErrInvalidMargin   = errors.New("margin percent must be between 0 and 100")
	ErrNotFound        = errors.New("company not found")
	ErrSlugExists      = errors.New("company with this name already exists")
	ErrForbidden       = errors.New("access to this company is not allowed")
)
