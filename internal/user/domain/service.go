package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/eventory/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*User, error)
	List(ctx context.Context, req ListRequest) ([]User, pagination.Meta, error)
	Get(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*User, error)
	Deactivate(ctx context.Context, id string) (*User, error)
}

type CreateRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=160"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	Role      string `json:"role" binding:"required,role"`
	CompanyID string `json:"company_id" binding:"omitempty,uuid"`
}

type UpdateRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=160"`
	Role      *string `json:"role" binding:"omitempty,role"`
	CompanyID *string `json:"company_id" binding:"omitempty"`
	IsActive  *bool   `json:"is_active"`
}

type ListRequest struct {
	pagination.Query
	Role      string `form:"role" binding:"omitempty,role"`
	CompanyID string `form:"company_id" binding:"omitempty,uuid"`
	IsActive  *bool  `form:"is_active"`
}

var (
	ErrInvalidPlatform  = errors.New("platform context is required")
	ErrInvalidID        = errors.New("invalid user id")
	ErrInvalidName      = errors.New("user name is required")
	ErrInvalidEmail     = errors.New("a valid email is required")
	ErrInvalidRole      = errors.New("role must be one of ADMIN, LOGISTICS, CLIENT")
	ErrCompanyRequired  = errors.New("client users must belong to a company")
	ErrInvalidCompany   = errors.New("company not found")
	ErrNotFound         = errors.New("user not found")
	ErrEmailExists      = errors.New("user with this email already exists")
	ErrLastAdmin        = errors.New("the last active admin cannot be demoted or deactivated")
	ErrSelfDeactivation = errors.New("you cannot deactivate your own account")
)
